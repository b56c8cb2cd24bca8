package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")

	ErrQuizNotFound    = fmt.Errorf("quiz %w", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrAttemptNotFound = fmt.Errorf("attempt %w", ErrNotFound)
)

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
