package errors

import (
	"errors"
	"fmt"
)

// ErrNotFound is the cause of errors returned for absent objects.
var ErrNotFound = errors.New("not found")

// NotFoundf returns an error wrapping ErrNotFound with a message
// defined by format and args.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

// IsNotFound returns true if err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
