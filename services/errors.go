package services

import "fmt"

// AuthorizationError means the caller is missing, unknown, or not allowed to
// act on the target resource.
type AuthorizationError struct {
	message string
}

func (e AuthorizationError) Error() string {
	return e.message
}

func NewAuthorizationError(formatString string, a ...interface{}) AuthorizationError {
	return AuthorizationError{message: fmt.Sprintf(formatString, a...)}
}

// NotFoundError means a referenced entity does not exist.
type NotFoundError struct {
	message string
}

func (e NotFoundError) Error() string {
	return e.message
}

func NewNotFoundError(formatString string, a ...interface{}) NotFoundError {
	return NotFoundError{message: fmt.Sprintf(formatString, a...)}
}

// ValidationError means the request itself is malformed.
type ValidationError struct {
	message string
}

func (e ValidationError) Error() string {
	return e.message
}

func NewValidationError(formatString string, a ...interface{}) ValidationError {
	return ValidationError{message: fmt.Sprintf(formatString, a...)}
}

// ConflictError means the write clashes with existing data.
type ConflictError struct {
	message string
}

func (e ConflictError) Error() string {
	return e.message
}

func NewConflictError(formatString string, a ...interface{}) ConflictError {
	return ConflictError{message: fmt.Sprintf(formatString, a...)}
}
