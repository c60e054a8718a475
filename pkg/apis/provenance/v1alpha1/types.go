package v1alpha1

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// BuildRef identifies a single build of a job.
// Build numbers increase monotonically per job, starting at 1.
type BuildRef struct {
	Job    string `json:"job" yaml:"job"`
	Number int    `json:"number" yaml:"number"`
}

// String returns the canonical key of the build, e.g. "my-job#3".
func (b BuildRef) String() string {
	return b.Job + buildRefSeparator + strconv.Itoa(b.Number)
}

// IsZero returns true if b does not identify any build.
func (b BuildRef) IsZero() bool {
	return b.Job == "" && b.Number == 0
}

const buildRefSeparator = "#"

// ParseBuildRef parses a build key as returned by BuildRef.String.
// The job name may contain the separator, only the last one is significant.
func ParseBuildRef(key string) (BuildRef, error) {
	i := strings.LastIndex(key, buildRefSeparator)
	if i <= 0 || i == len(key)-1 {
		return BuildRef{}, fmt.Errorf("invalid build key %q", key)
	}
	number, err := strconv.Atoi(key[i+1:])
	if err != nil || number < 1 {
		return BuildRef{}, fmt.Errorf("invalid build number in build key %q", key)
	}
	return BuildRef{Job: key[:i], Number: number}, nil
}

// FingerprintRecord maps the names of files produced by a build to
// the fingerprints of their contents.
type FingerprintRecord map[string]string

// FileNames returns the file names of the record in ascending order.
func (r FingerprintRecord) FileNames() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegistryEntry is the global record of a fingerprint.
// Entries are created on first sight of a fingerprint and the original
// producer never changes afterwards.
type RegistryEntry struct {
	Digest    string    `json:"digest" yaml:"digest"`
	FileName  string    `json:"fileName" yaml:"fileName"`
	Original  BuildRef  `json:"original" yaml:"original"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`

	// Usages lists all builds that recorded the fingerprint, including
	// the original, in order of first recording.
	Usages []BuildRef `json:"usages,omitempty" yaml:"usages,omitempty"`
}

// HasUsage returns true if build is listed as a usage of the entry.
func (e *RegistryEntry) HasUsage(build BuildRef) bool {
	for _, u := range e.Usages {
		if u == build {
			return true
		}
	}
	return false
}

// FingerprintReport is the fingerprint record of a completed build as
// submitted for ingestion.
type FingerprintReport struct {
	Build  BuildRef          `json:"build"`
	Record FingerprintRecord `json:"record"`
}
