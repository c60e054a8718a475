package framework

import (
	"context"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/SAP/stewardci-provenance/pkg/fingerprinter"
)

// WriteFile returns a step writing content to the slash separated path
// name relative to the workspace.
func WriteFile(name string, content []byte) Step {
	return func(ctx context.Context) error {
		return writeFile(filepath.Join(GetBuild(ctx).Workspace(), filepath.FromSlash(name)), content)
	}
}

// Checkout returns a step cloning repo into the workspace.
func Checkout(repo *GitSampleRepo) Step {
	return func(ctx context.Context) error {
		cmd := exec.CommandContext(ctx, "git", "clone", "--quiet", repo.Dir(), ".")
		cmd.Dir = GetBuild(ctx).Workspace()
		if out, err := cmd.CombinedOutput(); err != nil {
			return errors.Wrapf(err, "git clone failed: %s", out)
		}
		return nil
	}
}

// Fingerprint returns a step recording the workspace files matching
// includes as produced by the build.
func Fingerprint(includes ...string) Step {
	return func(ctx context.Context) error {
		build := GetBuild(ctx)
		_, err := build.job.engine.fingerprinter.Fingerprint(ctx, build.Ref(), build.Workspace(), includes)
		return err
	}
}

// FingerprintWith is like Fingerprint but uses fp.
func FingerprintWith(fp *fingerprinter.Fingerprinter, includes ...string) Step {
	return func(ctx context.Context) error {
		build := GetBuild(ctx)
		_, err := fp.Fingerprint(ctx, build.Ref(), build.Workspace(), includes)
		return err
	}
}
