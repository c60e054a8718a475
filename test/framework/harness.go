package framework

import (
	"context"
	"io"
	"testing"

	api "github.com/SAP/stewardci-provenance/pkg/apis/provenance/v1alpha1"
	"github.com/SAP/stewardci-provenance/pkg/fingerprint"
	"github.com/SAP/stewardci-provenance/pkg/fingerprinter"
	"github.com/SAP/stewardci-provenance/pkg/registry"
)

// Harness wires a registry, a verifier and a job engine for tests
// building projects and checking their fingerprints.
type Harness struct {
	t testing.TB

	Store         registry.Store
	Verifier      *fingerprint.Verifier
	Fingerprinter *fingerprinter.Fingerprinter
	Engine        *Engine
}

// HarnessOption configures a Harness.
type HarnessOption func(*harnessOptions)

type harnessOptions struct {
	store             registry.Store
	fingerprinterOpts []fingerprinter.Option
}

// WithStore lets the harness use store instead of a fresh in-memory one.
// The harness takes ownership: store is closed on test cleanup if it
// is an io.Closer.
func WithStore(store registry.Store) HarnessOption {
	return func(o *harnessOptions) {
		o.store = store
	}
}

// WithFingerprinterOptions sets the options of the fingerprinter used
// by Fingerprint steps.
func WithFingerprinterOptions(opts ...fingerprinter.Option) HarnessOption {
	return func(o *harnessOptions) {
		o.fingerprinterOpts = append(o.fingerprinterOpts, opts...)
	}
}

// NewHarness creates a harness for the test.
func NewHarness(t testing.TB, opts ...HarnessOption) *Harness {
	t.Helper()
	o := &harnessOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.store == nil {
		o.store = registry.NewMemoryStore()
	}
	t.Cleanup(func() {
		if closer, ok := o.store.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				t.Errorf("failed to close store: %v", err)
			}
		}
	})

	fp := fingerprinter.New(o.store, o.store, o.fingerprinterOpts...)
	return &Harness{
		t:             t,
		Store:         o.store,
		Verifier:      fingerprint.NewVerifier(o.store, o.store),
		Fingerprinter: fp,
		Engine:        NewEngine(t.TempDir(), fp),
	}
}

// CreateJob creates a job with a unique name starting with prefix.
func (h *Harness) CreateJob(prefix string) *Job {
	h.t.Helper()
	job, err := h.Engine.CreateUniqueJob(prefix)
	if err != nil {
		h.t.Fatal(err)
	}
	return job
}

// VerifyFileIsFingerprinted fails the test unless the build recorded
// fileName and the registry names the build as original producer.
func (h *Harness) VerifyFileIsFingerprinted(ctx context.Context, pipeline fingerprint.Pipeline, build fingerprint.Build, fileName string) {
	h.t.Helper()
	if err := h.Verifier.Verify(ctx, pipeline, build, fileName); err != nil {
		h.t.Fatalf("file %q of build %s#%d: %s: %v",
			fileName, pipeline.GetName(), build.GetNumber(), fingerprint.FailureKindOf(err), err)
	}
}

// VerificationFailure returns the failure kind of verifying fileName
// of the build, api.FailureKindNone if it verifies.
func (h *Harness) VerificationFailure(ctx context.Context, pipeline fingerprint.Pipeline, build fingerprint.Build, fileName string) api.FailureKind {
	return fingerprint.FailureKindOf(h.Verifier.Verify(ctx, pipeline, build, fileName))
}
