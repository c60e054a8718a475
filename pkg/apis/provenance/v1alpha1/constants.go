package v1alpha1

// ErrorClass classifies errors by their origin.
type ErrorClass string

const (
	// ErrorClassUndefined - unclassified error
	ErrorClassUndefined ErrorClass = ""
	// ErrorClassInfra - the error is caused by an infrastructure problem,
	// e.g. the registry storage is not accessible
	ErrorClassInfra ErrorClass = "error_infra"
	// ErrorClassContent - the error is caused by the data processed,
	// e.g. an artifact is not fingerprinted
	ErrorClassContent ErrorClass = "error_content"
	// ErrorClassConfig - the error is caused by invalid configuration
	ErrorClassConfig ErrorClass = "error_config"
)

// FailureKind is the kind of a failed fingerprint verification.
type FailureKind string

const (
	// FailureKindNone - verification succeeded
	FailureKindNone FailureKind = ""
	// FailureKindEmptyFileName - the file name to verify is empty
	FailureKindEmptyFileName FailureKind = "EmptyFileName"
	// FailureKindMissingFingerprintRecord - the build has no fingerprint record at all
	FailureKindMissingFingerprintRecord FailureKind = "MissingFingerprintRecord"
	// FailureKindFileNotFingerprinted - the file has no digest in the build's record
	FailureKindFileNotFingerprinted FailureKind = "FileNotFingerprinted"
	// FailureKindUnknownFingerprint - the digest is not known to the registry
	FailureKindUnknownFingerprint FailureKind = "UnknownFingerprint"
	// FailureKindFileNameMismatch - the registry stores a different file name
	FailureKindFileNameMismatch FailureKind = "FileNameMismatch"
	// FailureKindProvenanceMismatch - the registry names a different original build
	FailureKindProvenanceMismatch FailureKind = "ProvenanceMismatch"
	// FailureKindError - verification could not be performed due to an error
	// of a collaborator
	FailureKindError FailureKind = "Error"
)

// DigestAlgorithm is the algorithm used to compute fingerprints.
// MD5 keeps fingerprints compatible with Jenkins fingerprint records.
const DigestAlgorithm = "md5"

// DigestLength is the length of a hex encoded fingerprint.
const DigestLength = 32
