package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// ErrInvalidCredentials covers every credential-shaped failure: missing
	// input, unknown account, or wrong password. The message is identical
	// across causes to prevent account enumeration.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// RateLimitedError is returned when the login rate limiter denies an attempt.
// Unlike credential failures this error is intentionally specific: an active
// lockout is not a secret, and the genuine user benefits from knowing to wait.
type RateLimitedError struct {
	RetryAfterSeconds int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("too many attempts, retry after %d seconds", e.RetryAfterSeconds)
}

// AsRateLimited unwraps err into a RateLimitedError if it is one.
func AsRateLimited(err error) (*RateLimitedError, bool) {
	var rle *RateLimitedError
	if errors.As(err, &rle) {
		return rle, true
	}
	return nil, false
}
