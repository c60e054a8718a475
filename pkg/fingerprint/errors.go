package fingerprint

import (
	"errors"

	api "github.com/SAP/stewardci-provenance/pkg/apis/provenance/v1alpha1"
)

// Verification failures. Errors returned by Verifier wrap exactly one of
// them, use errors.Is or FailureKindOf to distinguish them.
var (
	ErrEmptyFileName            = errors.New("file name is empty")
	ErrMissingFingerprintRecord = errors.New("build has no fingerprint record")
	ErrFileNotFingerprinted     = errors.New("file is not fingerprinted")
	ErrUnknownFingerprint       = errors.New("fingerprint is not registered")
	ErrFileNameMismatch         = errors.New("registered file name does not match")
	ErrProvenanceMismatch       = errors.New("registered original build does not match")
)

var failureKinds = []struct {
	err  error
	kind api.FailureKind
}{
	{ErrEmptyFileName, api.FailureKindEmptyFileName},
	{ErrMissingFingerprintRecord, api.FailureKindMissingFingerprintRecord},
	{ErrFileNotFingerprinted, api.FailureKindFileNotFingerprinted},
	{ErrUnknownFingerprint, api.FailureKindUnknownFingerprint},
	{ErrFileNameMismatch, api.FailureKindFileNameMismatch},
	{ErrProvenanceMismatch, api.FailureKindProvenanceMismatch},
}

// FailureKindOf returns the kind of verification failure err represents.
// It returns FailureKindNone for nil and FailureKindError for errors
// that are not verification failures, e.g. I/O errors of a collaborator.
func FailureKindOf(err error) api.FailureKind {
	if err == nil {
		return api.FailureKindNone
	}
	for _, fk := range failureKinds {
		if errors.Is(err, fk.err) {
			return fk.kind
		}
	}
	return api.FailureKindError
}
