package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/KBRRM/create-class/logging"
	"github.com/KBRRM/create-class/models"
	"github.com/KBRRM/create-class/repositories"
	"github.com/KBRRM/create-class/utils"

	"github.com/sony/gobreaker"
)

// UserStore persists user accounts.
type UserStore interface {
	InsertUser(ctx context.Context, user *models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type AuthService struct {
	users        UserStore
	tokens       *utils.TokenManager
	usersBreaker *gobreaker.CircuitBreaker
}

func NewAuthService(users UserStore, tokens *utils.TokenManager, usersBreaker *gobreaker.CircuitBreaker) *AuthService {
	return &AuthService{
		users:        users,
		tokens:       tokens,
		usersBreaker: usersBreaker,
	}
}

// NewUsersBreaker builds the circuit breaker that guards user lookups.
func NewUsersBreaker(timeout time.Duration) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "users-store-cb",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		// A missing user or a caller that went away is not a store failure.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, repositories.ErrNotFound) ||
				errors.Is(err, context.Canceled) ||
				errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, NewValidationError("name, email, and password are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, NewValidationError("invalid email address %q", email)
	}
	if len(password) < 8 {
		return nil, NewValidationError("password must be at least 8 characters long")
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:      name,
		Email:     email,
		Password:  hashed,
		Role:      models.RoleUser,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.users.InsertUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, NewConflictError("user with email %s already exists", email)
		}
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and returns a signed access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, NewValidationError("email and password are required")
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", nil, NewAuthorizationError("invalid email or password")
	}
	if err != nil {
		return "", nil, err
	}
	if !utils.CheckPassword(user.Password, password) {
		return "", nil, NewAuthorizationError("invalid email or password")
	}

	token, err := s.tokens.GenerateToken(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return token, user, nil
}

// ResolveCaller loads the user behind an authenticated caller id.
// An unknown id yields an AuthorizationError.
func (s *AuthService) ResolveCaller(ctx context.Context, callerID string) (*models.User, error) {
	if callerID == "" {
		return nil, NewAuthorizationError("User not found")
	}

	result, err := s.usersBreaker.Execute(func() (interface{}, error) {
		return s.users.FindUserByID(ctx, callerID)
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, NewAuthorizationError("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve caller: %w", err)
	}
	return result.(*models.User), nil
}

// Me returns the profile of the calling user.
func (s *AuthService) Me(ctx context.Context, callerID string) (*models.User, error) {
	user, err := s.ResolveCaller(ctx, callerID)
	var authErr AuthorizationError
	if errors.As(err, &authErr) {
		return nil, NewNotFoundError("User not found")
	}
	return user, err
}
