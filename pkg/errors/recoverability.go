package errors

import (
	"errors"
)

type recoverabilityAnnotation struct {
	wrapped     error
	recoverable bool
}

// let compiler verify interface compliance
var _ error = (*recoverabilityAnnotation)(nil)

func (a *recoverabilityAnnotation) Error() string {
	return a.wrapped.Error()
}

func (a *recoverabilityAnnotation) Unwrap() error {
	return a.wrapped
}

// Recoverable annotates a given error as recoverable.
// It is equivalent to `RecoverableIf(err, true)`
func Recoverable(err error) error {
	return RecoverableIf(err, true)
}

// NonRecoverable annotates a given error as non-recoverable.
// It is equivalent to `RecoverableIf(err, false)`
func NonRecoverable(err error) error {
	return RecoverableIf(err, false)
}

// RecoverableIf conditionally annotates a given error as recoverable.
// If err is nil, the function returns nil.
// If the recoverability status of err is equal to cond, err itself
// is returned.
func RecoverableIf(err error, cond bool) error {
	if err == nil {
		return nil
	}
	if IsRecoverable(err) == cond {
		return err
	}
	return &recoverabilityAnnotation{
		wrapped:     err,
		recoverable: cond,
	}
}

// IsRecoverable returns true if the given error has been marked as
// recoverable.
func IsRecoverable(err error) bool {
	if annotation := (*recoverabilityAnnotation)(nil); errors.As(err, &annotation) {
		return annotation.recoverable
	}
	return false
}
