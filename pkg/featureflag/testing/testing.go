// Package testing lets tests switch feature flags.
//
// Feature flags are process-wide. Tests changing them must not run in
// parallel with tests depending on the same flags.
package testing

import "github.com/SAP/stewardci-provenance/pkg/featureflag"

// Cleaner is the subset of testing.TB needed to revert a flag.
type Cleaner interface {
	Cleanup(func())
}

// SetFeatureFlag switches ff to enabled until the test identified by t
// is finished.
//
// Example:
//
//	featureflagtesting.SetFeatureFlag(t, featureflag.TrackUsages, false)
func SetFeatureFlag(t Cleaner, ff *featureflag.FeatureFlag, enabled bool) {
	orig := ff.Enabled()
	featureflag.ParseFlags(flagString(ff, enabled))
	t.Cleanup(func() {
		featureflag.ParseFlags(flagString(ff, orig))
	})
}

func flagString(ff *featureflag.FeatureFlag, enabled bool) string {
	if enabled {
		return "+" + ff.Key
	}
	return "-" + ff.Key
}
