package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrVerificationFailed    = errors.New("verification failed")
	ErrConflict              = errors.New("already registered")
	ErrRateLimited           = errors.New("too many requests")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
