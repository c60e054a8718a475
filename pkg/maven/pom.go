package maven

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	stewarderrors "github.com/SAP/stewardci-provenance/pkg/errors"
)

// Packaging types with special artifact extensions.
const (
	PackagingJar         = "jar"
	PackagingPom         = "pom"
	PackagingMavenPlugin = "maven-plugin"
)

// Coordinates identifies a Maven project.
type Coordinates struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

// String returns `groupId:artifactId:version`.
func (c Coordinates) String() string {
	return fmt.Sprintf("%s:%s:%s", c.GroupID, c.ArtifactID, c.Version)
}

// POM is the subset of a project object model needed to name the
// artifacts of a build.
type POM struct {
	Coordinates
	Parent       *Coordinates `xml:"parent"`
	Packaging    string       `xml:"packaging"`
	Name         string       `xml:"name"`
	Modules      []string     `xml:"modules>module"`
	Dependencies []Dependency `xml:"dependencies>dependency"`
}

// Dependency is a declared dependency of a project.
type Dependency struct {
	Coordinates
	Type       string `xml:"type"`
	Classifier string `xml:"classifier"`
	Scope      string `xml:"scope"`
}

// ParsePOM parses a pom.xml. Group ID and version are inherited from
// the parent if not declared by the project itself.
func ParsePOM(input []byte) (*POM, error) {
	if len(input) == 0 {
		return nil, stewarderrors.Content(errors.New("empty POM"))
	}
	var pom POM
	if err := xml.Unmarshal(input, &pom); err != nil {
		return nil, stewarderrors.Content(errors.Wrap(err, "failed to parse POM"))
	}
	pom.trim()
	if pom.Parent != nil {
		if pom.GroupID == "" {
			pom.GroupID = pom.Parent.GroupID
		}
		if pom.Version == "" {
			pom.Version = pom.Parent.Version
		}
	}
	if pom.Packaging == "" {
		pom.Packaging = PackagingJar
	}
	if pom.GroupID == "" || pom.ArtifactID == "" || pom.Version == "" {
		return nil, stewarderrors.Content(fmt.Errorf("incomplete POM coordinates %q", pom.Coordinates.String()))
	}
	return &pom, nil
}

func (p *POM) trim() {
	for _, s := range []*string{&p.GroupID, &p.ArtifactID, &p.Version, &p.Packaging, &p.Name} {
		*s = strings.TrimSpace(*s)
	}
	if p.Parent != nil {
		p.Parent.GroupID = strings.TrimSpace(p.Parent.GroupID)
		p.Parent.ArtifactID = strings.TrimSpace(p.Parent.ArtifactID)
		p.Parent.Version = strings.TrimSpace(p.Parent.Version)
	}
}

// Artifacts returns the artifacts deployed for the project: the main
// artifact, if the packaging produces one, and the POM itself.
func (p *POM) Artifacts() []Artifact {
	pom := Artifact{Coordinates: p.Coordinates, Extension: "pom"}
	switch p.Packaging {
	case PackagingPom:
		return []Artifact{pom}
	case PackagingMavenPlugin:
		return []Artifact{{Coordinates: p.Coordinates, Extension: PackagingJar}, pom}
	default:
		return []Artifact{{Coordinates: p.Coordinates, Extension: p.Packaging}, pom}
	}
}

// Artifact is a single file in a Maven repository.
type Artifact struct {
	Coordinates
	Classifier string
	Extension  string

	// ResolvedVersion is the timestamped version of a deployed
	// snapshot file. If empty, Version is used in the file name.
	ResolvedVersion string
}

// FileName returns `artifactId-version[-classifier].extension`.
func (a Artifact) FileName() string {
	version := a.Version
	if a.ResolvedVersion != "" {
		version = a.ResolvedVersion
	}
	name := a.ArtifactID + "-" + version
	if a.Classifier != "" {
		name += "-" + a.Classifier
	}
	return name + "." + a.Extension
}

// RepositoryPath returns the slash separated path of the artifact
// relative to the repository root. This is the file name artifacts are
// fingerprinted with when deployed.
func (a Artifact) RepositoryPath() string {
	return strings.Join([]string{
		strings.ReplaceAll(a.GroupID, ".", "/"),
		a.ArtifactID,
		a.Version,
		a.FileName(),
	}, "/")
}
