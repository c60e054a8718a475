package framework

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"gotest.tools/v3/fs"

	stewarderrors "github.com/SAP/stewardci-provenance/pkg/errors"
)

// Fixture projects below testdata/test_maven_projects
const (
	MavenJarProject               = "maven_jar_project"
	MonoDependencyMavenJarProject = "mono_dependency_maven_jar_project"
	MavenWarProject               = "maven_war_project"
)

// GitSampleRepo is a local Git repository builds can check out.
type GitSampleRepo struct {
	t   testing.TB
	dir *fs.Dir
}

// NewGitSampleRepo creates an empty repository with an initial
// commit. The test is skipped if git is not installed.
func NewGitSampleRepo(t testing.TB) *GitSampleRepo {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("skipping: git not available: %v", err)
	}
	repo := &GitSampleRepo{t: t, dir: fs.NewDir(t, "git-sample-repo")}
	for _, args := range [][]string{
		{"init", "--quiet"},
		{"config", "user.name", "Test"},
		{"config", "user.email", "test@example.com"},
		{"config", "commit.gpgsign", "false"},
		{"commit", "--quiet", "--allow-empty", "--message", "init"},
	} {
		if _, err := repo.Git(context.Background(), args...); err != nil {
			t.Fatal(err)
		}
	}
	return repo
}

// Dir returns the working tree of the repository.
func (r *GitSampleRepo) Dir() string {
	return r.dir.Path()
}

// Git runs git with args in the repository and returns its trimmed
// standard output.
func (r *GitSampleRepo) Git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.Dir()
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", errors.Wrapf(err, "git %s failed: %s", strings.Join(args, " "), stderr.String())
	}
	return strings.TrimSpace(string(out)), nil
}

// Head returns the commit ID of HEAD.
func (r *GitSampleRepo) Head(ctx context.Context) (string, error) {
	return r.Git(ctx, "rev-parse", "HEAD")
}

// LoadSourceCodeInGitRepository copies the fixture project into the
// working tree and commits it.
func (r *GitSampleRepo) LoadSourceCodeInGitRepository(ctx context.Context, project string) error {
	if project == "" {
		return errors.New("fixture project name is empty")
	}
	source := fixtureDir(project)
	info, err := os.Stat(source)
	if err != nil || !info.IsDir() {
		return stewarderrors.NotFoundf("folder %q of fixture project %q", source, project)
	}
	fs.Apply(r.t, r.dir, fs.FromDir(source))
	if _, err := r.Git(ctx, "add", "--all"); err != nil {
		return err
	}
	_, err = r.Git(ctx, "commit", "--quiet", "--message", "add "+project)
	return err
}

// LoadMavenJarProject loads the maven_jar_project fixture.
func (r *GitSampleRepo) LoadMavenJarProject(ctx context.Context) error {
	return r.LoadSourceCodeInGitRepository(ctx, MavenJarProject)
}

// LoadMonoDependencyMavenJarProject loads the
// mono_dependency_maven_jar_project fixture.
func (r *GitSampleRepo) LoadMonoDependencyMavenJarProject(ctx context.Context) error {
	return r.LoadSourceCodeInGitRepository(ctx, MonoDependencyMavenJarProject)
}

// LoadMavenWarProject loads the maven_war_project fixture.
func (r *GitSampleRepo) LoadMavenWarProject(ctx context.Context) error {
	return r.LoadSourceCodeInGitRepository(ctx, MavenWarProject)
}

func fixtureDir(project string) string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "testdata", "test_maven_projects", project)
}
