package fingerprinter

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/errors"
	klog "k8s.io/klog/v2"

	api "github.com/SAP/stewardci-provenance/pkg/apis/provenance/v1alpha1"
	stewarderrors "github.com/SAP/stewardci-provenance/pkg/errors"
	"github.com/SAP/stewardci-provenance/pkg/featureflag"
	fpmetrics "github.com/SAP/stewardci-provenance/pkg/fingerprint/metrics"
	"github.com/SAP/stewardci-provenance/pkg/registry"
)

// ErrNoMatches is returned if no file in the workspace matches any
// include pattern and empty results are not allowed.
var ErrNoMatches = errors.New("no files matched the include patterns")

// Option configures a Fingerprinter.
type Option func(*Fingerprinter)

// AllowEmpty lets Fingerprint succeed with an empty record if no file
// matches.
func AllowEmpty() Option {
	return func(f *Fingerprinter) {
		f.allowEmpty = true
	}
}

// Fingerprinter records the files produced by builds.
type Fingerprinter struct {
	registry   registry.Registry
	records    registry.RecordStore
	allowEmpty bool
}

// New creates a Fingerprinter registering digests at reg and attaching
// records to records.
func New(reg registry.Registry, records registry.RecordStore, opts ...Option) *Fingerprinter {
	f := &Fingerprinter{
		registry: reg,
		records:  records,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fingerprint computes the digests of all files below workspace
// matching at least one of the include patterns, registers each of them
// as produced by build and attaches the record to build.
// Patterns are matched against slash separated paths relative to
// workspace, which are also the file names in the record.
func (f *Fingerprinter) Fingerprint(ctx context.Context, build api.BuildRef, workspace string, includes []string) (api.FingerprintRecord, error) {
	logger := klog.FromContext(ctx).WithValues("build", build.String())

	record, err := Scan(ctx, workspace, includes)
	if err != nil {
		return nil, err
	}
	if len(record) == 0 && !f.allowEmpty {
		return nil, stewarderrors.Content(errors.Wrapf(ErrNoMatches, "build %s: patterns %q in workspace %q", build, includes, workspace))
	}

	for _, fileName := range record.FileNames() {
		digest := record[fileName]
		entry, err := f.registry.Record(ctx, digest, fileName, build)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to register file %q of build %s", fileName, build)
		}
		if entry.Original != build {
			logger.V(3).Info("File has been produced before",
				"fileName", fileName, "digest", digest, "original", entry.Original.String())
		}
		fpmetrics.FilesFingerprinted.Inc(path.Ext(fileName))
	}

	if err := f.records.AttachRecord(ctx, build, record); err != nil {
		return nil, errors.Wrapf(err, "failed to attach fingerprint record to build %s", build)
	}
	logger.V(2).Info("Fingerprinted build", "files", len(record))
	return record, nil
}

// Scan computes the fingerprint record of the files below workspace
// matching any of includes without registering anything.
// Only regular files are considered. Empty files are skipped unless
// feature flag FingerprintEmptyFiles is enabled.
func Scan(ctx context.Context, workspace string, includes []string) (api.FingerprintRecord, error) {
	if err := validatePatterns(includes); err != nil {
		return nil, stewarderrors.Config(err)
	}
	logger := klog.FromContext(ctx)

	record := api.FingerprintRecord{}
	err := filepath.WalkDir(workspace, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(workspace, p)
		if err != nil {
			return err
		}
		fileName := filepath.ToSlash(rel)
		matched, err := matchesAny(includes, fileName)
		if err != nil || !matched {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Size() == 0 && !featureflag.FingerprintEmptyFiles.Enabled() {
			logger.V(4).Info("Skipping empty file", "fileName", fileName)
			return nil
		}

		digest, err := DigestFile(p)
		if err != nil {
			return err
		}
		record[fileName] = digest
		return nil
	})
	if err != nil {
		return nil, stewarderrors.Infra(errors.Wrapf(err, "failed to scan workspace %q", workspace))
	}
	return record, nil
}

func matchesAny(includes []string, fileName string) (bool, error) {
	for _, pattern := range includes {
		ok, err := matchPattern(pattern, fileName)
		if ok || err != nil {
			return ok, err
		}
	}
	return false, nil
}

// DigestFile returns the lowercase hex encoded MD5 digest of the file
// at path.
func DigestFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	return Digest(file)
}

// Digest returns the lowercase hex encoded MD5 digest of all data
// read from r.
func Digest(r io.Reader) (string, error) {
	hash := md5.New()
	if _, err := io.Copy(hash, r); err != nil {
		return "", errors.Wrap(err, "failed to compute digest")
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
