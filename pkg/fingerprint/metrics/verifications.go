package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	api "github.com/SAP/stewardci-provenance/pkg/apis/provenance/v1alpha1"
	"github.com/SAP/stewardci-provenance/pkg/metrics"
)

var (
	// Verifications counts fingerprint verifications partitioned by result
	// and observes their duration.
	Verifications VerificationsMetric = &verifications{}
)

func init() {
	Verifications.(*verifications).init()
}

type verifications struct {
	initOnlyOnce   sync.Once
	countMetric    *prometheus.CounterVec
	durationMetric prometheus.Histogram
}

func (m *verifications) init() {
	m.initOnlyOnce.Do(func() {
		m.countMetric = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Subsystem: subsystem,
				Name:      "verifications_total",
				Help:      "The number of fingerprint verifications partitioned by result. The result is either `success` or the kind of failure.",
			},
			[]string{
				"result",
			},
		)
		metrics.Registerer().MustRegister(m.countMetric)

		m.durationMetric = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Subsystem: subsystem,
				Name:      "verification_duration_seconds",
				Help:      "A histogram of the duration of fingerprint verifications, including the lookups in record store and registry.",
				Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
			},
		)
		metrics.Registerer().MustRegister(m.durationMetric)
	})
}

func (m *verifications) Observe(kind api.FailureKind, duration time.Duration) {
	result := string(kind)
	if kind == api.FailureKindNone {
		result = resultSuccess
	}
	m.countMetric.WithLabelValues(result).Inc()
	if duration >= 0 {
		m.durationMetric.Observe(duration.Seconds())
	}
}
