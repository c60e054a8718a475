package errors

import (
	"errors"

	api "github.com/SAP/stewardci-provenance/pkg/apis/provenance/v1alpha1"
)

type errorClassAnnotation struct {
	wrapped error
	class   api.ErrorClass
}

// let compiler verify interface compliance
var _ error = (*errorClassAnnotation)(nil)

func (a *errorClassAnnotation) Error() string {
	return a.wrapped.Error()
}

func (a *errorClassAnnotation) Unwrap() error {
	return a.wrapped
}

// Classify annotates a given error with an error class.
// If err is nil, the function returns nil.
func Classify(err error, class api.ErrorClass) error {
	if err == nil {
		return nil
	}
	return &errorClassAnnotation{
		wrapped: err,
		class:   class,
	}
}

// GetClass returns the class of the error.
// The outermost annotation wins.
func GetClass(err error) api.ErrorClass {
	if annotation := (*errorClassAnnotation)(nil); errors.As(err, &annotation) {
		return annotation.class
	}
	return api.ErrorClassUndefined
}

// Infra classifies err as infrastructure error and marks it recoverable.
func Infra(err error) error {
	return Recoverable(Classify(err, api.ErrorClassInfra))
}

// Content classifies err as content error and marks it non-recoverable.
func Content(err error) error {
	return NonRecoverable(Classify(err, api.ErrorClassContent))
}

// Config classifies err as configuration error and marks it
// non-recoverable.
func Config(err error) error {
	return NonRecoverable(Classify(err, api.ErrorClassConfig))
}
