package framework

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"

	stewarderrors "github.com/SAP/stewardci-provenance/pkg/errors"
	"github.com/SAP/stewardci-provenance/pkg/maven"
)

// testEnvironment holds the settings of the test run taken from the
// environment.
type testEnvironment struct {
	// BuildDirectory contains unpacked Maven distributions named
	// apache-maven-<version>. Defaults to target/ in the module root.
	BuildDirectory string `env:"PROVENANCE_TEST_BUILD_DIRECTORY"`
	MavenVersion   string `env:"PROVENANCE_TEST_MAVEN_VERSION" envDefault:"3.6.3"`
}

func loadTestEnvironment() (*testEnvironment, error) {
	var result testEnvironment
	if err := env.Parse(&result); err != nil {
		return nil, stewarderrors.Config(errors.Wrap(err, "invalid test environment"))
	}
	if result.BuildDirectory == "" {
		result.BuildDirectory = filepath.Join(moduleRoot(), "target")
	}
	return &result, nil
}

// moduleRoot returns the root directory of the source tree.
func moduleRoot() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..")
}

// MavenInstallation is a Maven distribution available to builds.
type MavenInstallation struct {
	Name string
	Home string
}

// Executable returns the path of the mvn launcher.
func (m *MavenInstallation) Executable() string {
	return filepath.Join(m.Home, "bin", "mvn")
}

// FindMavenInstallation returns the Maven distribution of the given
// version unpacked in buildDirectory.
// Distributions are never downloaded.
func FindMavenInstallation(buildDirectory, version string) (*MavenInstallation, error) {
	name := "apache-maven-" + version
	inst := &MavenInstallation{Name: name, Home: filepath.Join(buildDirectory, name)}
	info, err := os.Stat(inst.Executable())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, stewarderrors.NotFoundf("maven installation %q in %q", name, buildDirectory)
		}
		return nil, errors.Wrapf(err, "failed to inspect maven installation %q", inst.Home)
	}
	if info.IsDir() {
		return nil, errors.Errorf("maven launcher %q is a directory", inst.Executable())
	}
	return inst, nil
}

// ConfigureDefaultMaven returns the Maven installation of the version
// configured for the test run. The test is skipped if it is not
// available.
func ConfigureDefaultMaven(t testing.TB) *MavenInstallation {
	t.Helper()
	testEnv, err := loadTestEnvironment()
	if err != nil {
		t.Fatal(err)
	}
	return ConfigureMaven(t, testEnv.BuildDirectory, testEnv.MavenVersion)
}

// ConfigureMaven is like ConfigureDefaultMaven for an explicit location
// and version.
func ConfigureMaven(t testing.TB, buildDirectory, version string) *MavenInstallation {
	t.Helper()
	inst, err := FindMavenInstallation(buildDirectory, version)
	if stewarderrors.IsNotFound(err) {
		t.Skipf("skipping: %v", err)
	}
	if err != nil {
		t.Fatal(err)
	}
	return inst
}

// RunMaven returns a step running the Maven installation with goals in
// the workspace against the engine's shared local repository.
func RunMaven(inst *MavenInstallation, goals ...string) Step {
	return func(ctx context.Context) error {
		build := GetBuild(ctx)
		args := append([]string{
			"--batch-mode",
			"-Dmaven.repo.local=" + build.job.engine.MavenRepository(),
		}, goals...)
		cmd := exec.CommandContext(ctx, inst.Executable(), args...)
		cmd.Dir = build.Workspace()
		cmd.Env = append(os.Environ(), "MAVEN_HOME="+inst.Home)
		if out, err := cmd.CombinedOutput(); err != nil {
			return errors.Wrapf(err, "%s %v failed: %s", inst.Name, goals, out)
		}
		return nil
	}
}

// InstallArtifacts returns a step installing the artifacts of the
// Maven project in the workspace into the shared local repository
// without running Maven.
// Artifact contents are derived from the project sources, so unchanged
// sources produce identical artifacts. Declared dependencies must have
// been installed before.
func InstallArtifacts() Step {
	return func(ctx context.Context) error {
		build := GetBuild(ctx)
		repository := build.job.engine.MavenRepository()
		projects, err := loadReactor(build.Workspace())
		if err != nil {
			return err
		}
		for _, p := range projects {
			for _, dep := range p.dependencies() {
				if _, err := os.Stat(filepath.Join(repository, filepath.FromSlash(dep.RepositoryPath()))); err != nil {
					return stewarderrors.Content(errors.Errorf("project %s: unresolved dependency %s", p.pom.Coordinates, dep.RepositoryPath()))
				}
			}
			for _, artifact := range p.pom.Artifacts() {
				content := p.pomContent
				if artifact.Extension != "pom" {
					if content, err = p.packageContent(); err != nil {
						return err
					}
					if err := writeFile(filepath.Join(p.dir, "target", artifact.FileName()), content); err != nil {
						return err
					}
				}
				if err := writeFile(filepath.Join(repository, filepath.FromSlash(artifact.RepositoryPath())), content); err != nil {
					return err
				}
			}
		}
		return nil
	}
}

// FingerprintMavenArtifacts returns a step fingerprinting the artifacts
// of the Maven project in the workspace and its resolved dependencies
// under their repository paths.
func FingerprintMavenArtifacts() Step {
	return func(ctx context.Context) error {
		build := GetBuild(ctx)
		projects, err := loadReactor(build.Workspace())
		if err != nil {
			return err
		}
		var includes []string
		for _, p := range projects {
			for _, artifact := range p.pom.Artifacts() {
				includes = append(includes, artifact.RepositoryPath())
			}
			for _, dep := range p.dependencies() {
				includes = append(includes, dep.RepositoryPath())
			}
		}
		_, err = build.job.engine.fingerprinter.Fingerprint(ctx, build.Ref(), build.job.engine.MavenRepository(), includes)
		return err
	}
}

type mavenProject struct {
	dir        string
	pom        *maven.POM
	pomContent []byte
}

// loadReactor returns the project in dir followed by its modules,
// recursively.
func loadReactor(dir string) ([]*mavenProject, error) {
	pomFile := filepath.Join(dir, "pom.xml")
	content, err := os.ReadFile(pomFile)
	if err != nil {
		return nil, stewarderrors.Content(errors.Wrapf(err, "failed to read %q", pomFile))
	}
	pom, err := maven.ParsePOM(content)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid POM %q", pomFile)
	}
	result := []*mavenProject{{dir: dir, pom: pom, pomContent: content}}
	for _, module := range pom.Modules {
		modules, err := loadReactor(filepath.Join(dir, filepath.FromSlash(module)))
		if err != nil {
			return nil, err
		}
		result = append(result, modules...)
	}
	return result, nil
}

// dependencies returns the artifacts of the non-test dependencies.
func (p *mavenProject) dependencies() []maven.Artifact {
	var result []maven.Artifact
	for _, dep := range p.pom.Dependencies {
		if dep.Scope == "test" {
			continue
		}
		extension := dep.Type
		if extension == "" {
			extension = maven.PackagingJar
		}
		result = append(result, maven.Artifact{
			Coordinates: dep.Coordinates,
			Classifier:  dep.Classifier,
			Extension:   extension,
		})
	}
	return result
}

// packageContent returns the coordinates of the project followed by
// the paths and contents of all files below src/ in lexical order.
func (p *mavenProject) packageContent() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(p.pom.Coordinates.String() + "\n")
	src := filepath.Join(p.dir, "src")
	err := filepath.WalkDir(src, func(file string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && file == src {
				return filepath.SkipDir
			}
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		content, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(p.dir, file)
		if err != nil {
			return err
		}
		buf.WriteString(filepath.ToSlash(rel) + "\n")
		buf.Write(content)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to package project %s", p.pom.Coordinates)
	}
	return buf.Bytes(), nil
}

func writeFile(file string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create directory of %q", file)
	}
	return errors.Wrapf(os.WriteFile(file, content, 0o644), "failed to write %q", file)
}
