package repositories

import "github.com/pkg/errors"

var (
	// ErrNotFound is returned when a looked-up document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidID is returned for ids that are not valid ObjectID hex strings.
	ErrInvalidID = errors.New("invalid id format")
	// ErrDuplicate is returned when a unique index rejects an insert.
	ErrDuplicate = errors.New("document already exists")
)
