package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Retries observes operations that succeeded or finally failed
	// after having been retried, e.g. registry writes hitting a locked
	// database.
	Retries RetriesMetric = &retriesMetric{}
)

func init() {
	Retries.(*retriesMetric).init()
}

// RetriesMetric observes finished retried operations.
type RetriesMetric interface {
	// Observe records a finished retry loop at codeLocation.
	// retryCount excludes the first attempt. Loops without retries
	// are not recorded.
	// latency is the time from the first attempt until the loop ended.
	Observe(codeLocation string, retryCount uint64, latency time.Duration)
}

// retryCountBuckets covers the retry counts of the client-go default
// backoffs.
var retryCountBuckets = []float64{1, 2, 3, 4, 5, 10, 20, 50}

// retryLatencyBuckets ranges from 1ms to 1min.
var retryLatencyBuckets = prometheus.ExponentialBuckets(0.001, 4, 9)

type retriesMetric struct {
	initOnlyOnce sync.Once
	attempts     *prometheus.HistogramVec
	latency      *prometheus.HistogramVec
}

func (m *retriesMetric) init() {
	m.initOnlyOnce.Do(func() {
		m.attempts = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Subsystem: Subsystem,
				Name:      "retry_attempts",
				Help:      "Number of retries performed by retried operations.",
				Buckets:   retryCountBuckets,
			},
			[]string{"location"},
		)
		m.latency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Subsystem: Subsystem,
				Name:      "retry_latency_seconds",
				Help:      "Time in seconds spent in retried operations including all attempts.",
				Buckets:   retryLatencyBuckets,
			},
			[]string{"location"},
		)
		Registerer().MustRegister(m.attempts, m.latency)
	})
}

func (m *retriesMetric) Observe(codeLocation string, retryCount uint64, latency time.Duration) {
	if retryCount == 0 {
		return
	}
	m.attempts.WithLabelValues(codeLocation).Observe(float64(retryCount))
	m.latency.WithLabelValues(codeLocation).Observe(latency.Seconds())
}
