package metrics

import (
	"time"

	api "github.com/SAP/stewardci-provenance/pkg/apis/provenance/v1alpha1"
)

// CounterMetric is a monotonic counter metric.
type CounterMetric interface {
	Inc()
}

// VerificationsMetric observes finished fingerprint verifications.
type VerificationsMetric interface {
	// Observe counts a verification with the given result.
	// FailureKindNone denotes success.
	Observe(kind api.FailureKind, duration time.Duration)
}

// FilesMetric counts files by a label value.
type FilesMetric interface {
	Inc(label string)
}
