package registry

import (
	"context"

	api "github.com/SAP/stewardci-provenance/pkg/apis/provenance/v1alpha1"
	"github.com/SAP/stewardci-provenance/pkg/fingerprint"
)

// Registry is the global fingerprint registry.
// Entries are append-only: the first build recording a digest becomes
// its original producer and is never replaced.
type Registry interface {
	fingerprint.Resolver

	// Record registers that build produced a file named fileName with
	// the given digest. If the digest is unknown a new entry with build
	// as original is created. Otherwise the existing entry is kept and
	// build is added to its usages.
	// The returned entry must not be modified by the caller.
	Record(ctx context.Context, digest, fileName string, build api.BuildRef) (*api.RegistryEntry, error)
}

// RecordStore stores the fingerprint records of builds.
type RecordStore interface {
	fingerprint.RecordSource

	// AttachRecord stores the fingerprint record of build, replacing
	// a previously attached one. An empty record is stored as well.
	AttachRecord(ctx context.Context, build api.BuildRef, record api.FingerprintRecord) error

	// ListBuilds returns the builds of job that have a record attached
	// in ascending order of build numbers.
	ListBuilds(ctx context.Context, job string) ([]api.BuildRef, error)
}

// Store is a Registry and a RecordStore sharing one storage.
type Store interface {
	Registry
	RecordStore
}
