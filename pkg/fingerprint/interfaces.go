package fingerprint

import (
	"context"

	api "github.com/SAP/stewardci-provenance/pkg/apis/provenance/v1alpha1"
)

//go:generate mockgen -destination=mocks/mocks.go -package=mocks github.com/SAP/stewardci-provenance/pkg/fingerprint RecordSource,Resolver,Pipeline,Build

// Pipeline identifies the job definition that produced a build.
type Pipeline interface {
	GetName() string
}

// Build identifies a single execution of a pipeline.
type Build interface {
	GetNumber() int
}

// RecordSource provides the fingerprint records attached to builds.
type RecordSource interface {
	// GetFingerprintRecord returns the fingerprint record of the build.
	// ok is false if the build has no record at all. A build that
	// fingerprinted nothing has an empty record.
	GetFingerprintRecord(ctx context.Context, build api.BuildRef) (record api.FingerprintRecord, ok bool, err error)
}

// Resolver resolves fingerprints through the global registry.
type Resolver interface {
	// Resolve returns the registry entry of the digest.
	// ok is false if the digest is unknown.
	Resolve(ctx context.Context, digest string) (entry *api.RegistryEntry, ok bool, err error)
}

// JobName is a Pipeline identified by its name only.
type JobName string

// Compiler check for interface compliance
var _ Pipeline = JobName("")

// GetName implements Pipeline.
func (n JobName) GetName() string {
	return string(n)
}

// BuildNumber is a Build identified by its number only.
type BuildNumber int

// Compiler check for interface compliance
var _ Build = BuildNumber(0)

// GetNumber implements Build.
func (n BuildNumber) GetNumber() int {
	return int(n)
}
