package registry

import (
	"encoding/hex"
	"fmt"

	api "github.com/SAP/stewardci-provenance/pkg/apis/provenance/v1alpha1"
	stewarderrors "github.com/SAP/stewardci-provenance/pkg/errors"
	"github.com/SAP/stewardci-provenance/pkg/featureflag"
)

// ValidateDigest returns a content error if digest is not a lowercase
// hex encoded MD5 digest.
// If feature flag ValidateDigests is disabled only empty digests are
// rejected.
func ValidateDigest(digest string) error {
	if digest == "" {
		return stewarderrors.Content(fmt.Errorf("digest is empty"))
	}
	if !featureflag.ValidateDigests.Enabled() {
		return nil
	}
	if len(digest) != api.DigestLength {
		return stewarderrors.Content(fmt.Errorf("invalid %s digest %q: expected %d characters", api.DigestAlgorithm, digest, api.DigestLength))
	}
	if _, err := hex.DecodeString(digest); err != nil {
		return stewarderrors.Content(fmt.Errorf("invalid %s digest %q: not hex encoded", api.DigestAlgorithm, digest))
	}
	for _, c := range digest {
		if c >= 'A' && c <= 'F' {
			return stewarderrors.Content(fmt.Errorf("invalid %s digest %q: must be lowercase", api.DigestAlgorithm, digest))
		}
	}
	return nil
}

func validateBuild(build api.BuildRef) error {
	if build.Job == "" || build.Number < 1 {
		return stewarderrors.Content(fmt.Errorf("invalid build %q", build.String()))
	}
	return nil
}

// ValidateEntry checks the input of Registry.Record.
func ValidateEntry(digest, fileName string, build api.BuildRef) error {
	return ValidateRecord(build, api.FingerprintRecord{fileName: digest})
}

// ValidateRecord checks all digests of a fingerprint record and the
// build reference it is attached to.
func ValidateRecord(build api.BuildRef, record api.FingerprintRecord) error {
	if err := validateBuild(build); err != nil {
		return err
	}
	for _, fileName := range record.FileNames() {
		if fileName == "" {
			return stewarderrors.Content(fmt.Errorf("record of build %s contains an empty file name", build))
		}
		if err := ValidateDigest(record[fileName]); err != nil {
			return err
		}
	}
	return nil
}
