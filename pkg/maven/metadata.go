package maven

import (
	"encoding/xml"
	"strings"

	"github.com/pkg/errors"

	stewarderrors "github.com/SAP/stewardci-provenance/pkg/errors"
)

const snapshotSuffix = "-SNAPSHOT"

// Metadata is the content of a maven-metadata.xml file.
type Metadata struct {
	Coordinates
	Versioning Versioning `xml:"versioning"`
}

// Versioning is the `versioning` element of Maven metadata.
type Versioning struct {
	Latest           string            `xml:"latest"`
	Release          string            `xml:"release"`
	Versions         []string          `xml:"versions>version"`
	LastUpdated      string            `xml:"lastUpdated"`
	Snapshot         Snapshot          `xml:"snapshot"`
	SnapshotVersions []SnapshotVersion `xml:"snapshotVersions>snapshotVersion"`
}

// Snapshot identifies the most recent deployment of a snapshot version.
type Snapshot struct {
	Timestamp   string `xml:"timestamp"`
	BuildNumber string `xml:"buildNumber"`
}

// SnapshotVersion is the resolved version of one snapshot file.
type SnapshotVersion struct {
	Classifier string `xml:"classifier"`
	Extension  string `xml:"extension"`
	Value      string `xml:"value"`
	Updated    string `xml:"updated"`
}

// ParseMetadata parses a maven-metadata.xml file.
func ParseMetadata(input []byte) (*Metadata, error) {
	if len(input) == 0 {
		return nil, stewarderrors.Content(errors.New("empty Maven metadata"))
	}
	var metadata Metadata
	if err := xml.Unmarshal(input, &metadata); err != nil {
		return nil, stewarderrors.Content(errors.Wrap(err, "failed to parse Maven metadata"))
	}
	return &metadata, nil
}

// IsSnapshot reports whether version is a snapshot version.
func IsSnapshot(version string) bool {
	return strings.HasSuffix(version, snapshotSuffix)
}

// SnapshotResolvedVersion returns the timestamped version of the
// artifact file with the given extension and classifier deployed
// last. If the metadata does not describe a snapshot deployment of such
// a file, the plain version is returned.
func (m *Metadata) SnapshotResolvedVersion(extension, classifier string) string {
	if !IsSnapshot(m.Version) {
		return m.Version
	}
	snapshot := m.Versioning.Snapshot
	if snapshot.Timestamp != "" && snapshot.BuildNumber != "" {
		expected := strings.TrimSuffix(m.Version, snapshotSuffix) + "-" + snapshot.Timestamp + "-" + snapshot.BuildNumber
		for _, v := range m.Versioning.SnapshotVersions {
			if v.Extension == extension && v.Classifier == classifier && v.Value == expected {
				return v.Value
			}
		}
	}
	return m.Version
}

// ResolveArtifact returns a copy of a with ResolvedVersion set from the
// metadata. Artifacts of other projects are returned unchanged.
func (m *Metadata) ResolveArtifact(a Artifact) Artifact {
	if m.Coordinates != a.Coordinates {
		return a
	}
	if resolved := m.SnapshotResolvedVersion(a.Extension, a.Classifier); resolved != a.Version {
		a.ResolvedVersion = resolved
	}
	return a
}
