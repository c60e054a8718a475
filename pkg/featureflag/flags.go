package featureflag

var (
	// ValidateDigests controls whether fingerprints are checked to be
	// well-formed hex encoded MD5 digests before they are recorded.
	ValidateDigests = New("ValidateDigests", Bool(true))

	// TrackUsages controls whether the registry records every build
	// that produced a known fingerprint, not only the original one.
	TrackUsages = New("TrackUsages", Bool(true))

	// FingerprintEmptyFiles controls whether zero-length files are
	// fingerprinted. Empty files all share one digest and would be
	// attributed to the first build that ever produced one.
	FingerprintEmptyFiles = New("FingerprintEmptyFiles", Bool(false))
)
