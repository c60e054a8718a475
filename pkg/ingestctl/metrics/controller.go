package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/SAP/stewardci-provenance/pkg/metrics"
)

var (
	// ControllerHeartbeats counts the number of heartbeats of
	// the ingest controller.
	ControllerHeartbeats CounterMetric = &controllerHeartbeats{}

	// Results counts ingestion attempts of fingerprint reports
	// partitioned by result.
	Results ResultsMetric = &results{}

	// Latency observes the time from enqueuing a fingerprint report
	// until it has been ingested.
	Latency DurationMetric = &latency{}
)

func init() {
	ControllerHeartbeats.(*controllerHeartbeats).init()
	Results.(*results).init()
	Latency.(*latency).init()
}

type controllerHeartbeats struct {
	initOnlyOnce sync.Once
	metric       prometheus.Counter
}

func (m *controllerHeartbeats) init() {
	m.initOnlyOnce.Do(func() {
		m.metric = prometheus.NewCounter(
			prometheus.CounterOpts{
				Subsystem: subsystem,
				Name:      "controller_heartbeats_total",
				Help:      "The number of heartbeats of the ingest controller instance.",
			},
		)
		metrics.Registerer().MustRegister(m.metric)
	})
}

func (m *controllerHeartbeats) Inc() {
	m.metric.Inc()
}

type results struct {
	initOnlyOnce sync.Once
	metric       *prometheus.CounterVec
}

func (m *results) init() {
	m.initOnlyOnce.Do(func() {
		m.metric = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Subsystem: subsystem,
				Name:      "reports_total",
				Help:      "The number of fingerprint report ingestion attempts partitioned by result.",
			},
			[]string{
				"result",
			},
		)
		metrics.Registerer().MustRegister(m.metric)
	})
}

func (m *results) Inc(result string) {
	m.metric.WithLabelValues(result).Inc()
}

type latency struct {
	initOnlyOnce sync.Once
	metric       prometheus.Histogram
}

func (m *latency) init() {
	m.initOnlyOnce.Do(func() {
		m.metric = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Subsystem: subsystem,
				Name:      "latency_seconds",
				Help:      "A histogram of the time from enqueuing a fingerprint report until it has been ingested.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 20),
			},
		)
		metrics.Registerer().MustRegister(m.metric)
	})
}

func (m *latency) Observe(duration time.Duration) {
	m.metric.Observe(duration.Seconds())
}
