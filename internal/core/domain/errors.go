package domain

import "errors"

var (
	// ErrValidation marks missing or malformed client input.
	ErrValidation         = errors.New("validation failed")
	ErrUserExists         = errors.New("user with this email or username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthenticated covers absent, malformed, expired and revoked
	// credentials alike.
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrForbidden        = errors.New("forbidden")
	ErrSessionNotFound  = errors.New("session not found")
	ErrTokenInvalid     = errors.New("invalid token")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError carries a client-facing message and matches ErrValidation
// under errors.Is.
type ValidationError struct {
	Message string
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
