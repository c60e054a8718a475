package fingerprint

import (
	"context"
	"reflect"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	klog "k8s.io/klog/v2"

	api "github.com/SAP/stewardci-provenance/pkg/apis/provenance/v1alpha1"
	stewarderrors "github.com/SAP/stewardci-provenance/pkg/errors"
	"github.com/SAP/stewardci-provenance/pkg/fingerprint/metrics"
)

// Verifier checks that an artifact produced by a build is fingerprinted
// and attributed to that build by the fingerprint registry.
//
// A Verifier only reads from its collaborators and is safe for
// concurrent use.
type Verifier struct {
	records  RecordSource
	registry Resolver
	clock    clock.Clock
}

// NewVerifier creates a Verifier reading build records from records
// and registry entries from registry.
func NewVerifier(records RecordSource, registry Resolver) *Verifier {
	return &Verifier{
		records:  records,
		registry: registry,
		clock:    clock.New(),
	}
}

// Verify checks that the file named fileName has been fingerprinted by
// build of pipeline and that the fingerprint registry names this build
// as the original producer of the file.
//
// A verification failure is returned as content error wrapping one of
// the Err* values of this package. Errors of the collaborators are
// returned wrapped with context and classified as infra errors unless
// they carry a class already.
// Nil pipeline or build, including typed nil pointers, is an error.
func (v *Verifier) Verify(ctx context.Context, pipeline Pipeline, build Build, fileName string) error {
	if isNil(pipeline) || isNil(build) {
		return errors.New("pipeline and build must not be nil")
	}
	return v.VerifyBuild(ctx, api.BuildRef{Job: pipeline.GetName(), Number: build.GetNumber()}, fileName)
}

// VerifyBuild is like Verify with the build given as reference.
func (v *Verifier) VerifyBuild(ctx context.Context, ref api.BuildRef, fileName string) error {
	start := v.clock.Now()
	err := v.verify(ctx, ref, fileName)
	kind := FailureKindOf(err)
	metrics.Verifications.Observe(kind, v.clock.Since(start))

	logger := klog.FromContext(ctx)
	if err != nil {
		logger.V(2).Info("Fingerprint verification failed",
			"build", ref.String(), "fileName", fileName, "failure", kind, "error", err.Error())
	} else {
		logger.V(4).Info("Fingerprint verified", "build", ref.String(), "fileName", fileName)
	}
	return err
}

func (v *Verifier) verify(ctx context.Context, ref api.BuildRef, fileName string) error {
	if fileName == "" {
		return stewarderrors.Content(errors.Wrapf(ErrEmptyFileName, "build %s", ref))
	}

	record, ok, err := v.records.GetFingerprintRecord(ctx, ref)
	if err != nil {
		return lookupError(errors.Wrapf(err, "failed to get fingerprint record of build %s", ref))
	}
	if !ok {
		return stewarderrors.Content(errors.Wrapf(ErrMissingFingerprintRecord, "build %s", ref))
	}

	digest := record[fileName]
	if digest == "" {
		return stewarderrors.Content(errors.Wrapf(ErrFileNotFingerprinted, "file %q of build %s", fileName, ref))
	}

	entry, ok, err := v.registry.Resolve(ctx, digest)
	if err != nil {
		return lookupError(errors.Wrapf(err, "failed to resolve fingerprint %s", digest))
	}
	if !ok || entry == nil {
		return stewarderrors.Content(errors.Wrapf(ErrUnknownFingerprint,
			"fingerprint %s of file %q of build %s", digest, fileName, ref))
	}

	// exact match, no case folding
	if entry.FileName != fileName {
		return stewarderrors.Content(errors.Wrapf(ErrFileNameMismatch,
			"fingerprint %s: expected file name %q, registered %q", digest, fileName, entry.FileName))
	}

	if entry.Original != ref {
		return stewarderrors.Content(errors.Wrapf(ErrProvenanceMismatch,
			"fingerprint %s of file %q: expected original build %s, registered %s",
			digest, fileName, ref, entry.Original))
	}
	return nil
}

func lookupError(err error) error {
	if stewarderrors.GetClass(err) == api.ErrorClassUndefined {
		return stewarderrors.Infra(err)
	}
	return err
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}
