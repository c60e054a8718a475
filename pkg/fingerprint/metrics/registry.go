package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/SAP/stewardci-provenance/pkg/metrics"
)

var (
	// EntriesCreated counts registry entries created, i.e. fingerprints
	// seen for the first time.
	EntriesCreated CounterMetric = &entriesCreated{}

	// FilesFingerprinted counts files fingerprinted by builds partitioned
	// by file extension.
	FilesFingerprinted FilesMetric = &filesFingerprinted{}
)

func init() {
	EntriesCreated.(*entriesCreated).init()
	FilesFingerprinted.(*filesFingerprinted).init()
}

type entriesCreated struct {
	initOnlyOnce sync.Once
	metric       prometheus.Counter
}

func (m *entriesCreated) init() {
	m.initOnlyOnce.Do(func() {
		m.metric = prometheus.NewCounter(
			prometheus.CounterOpts{
				Subsystem: subsystem,
				Name:      "registry_entries_created_total",
				Help:      "The number of fingerprints registered for the first time.",
			},
		)
		metrics.Registerer().MustRegister(m.metric)
	})
}

func (m *entriesCreated) Inc() {
	m.metric.Inc()
}

type filesFingerprinted struct {
	initOnlyOnce sync.Once
	metric       *prometheus.CounterVec
}

func (m *filesFingerprinted) init() {
	m.initOnlyOnce.Do(func() {
		m.metric = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Subsystem: subsystem,
				Name:      "files_total",
				Help:      "The number of files fingerprinted partitioned by file extension.",
			},
			[]string{
				"extension",
			},
		)
		metrics.Registerer().MustRegister(m.metric)
	})
}

func (m *filesFingerprinted) Inc(extension string) {
	if extension == "" {
		extension = "none"
	}
	m.metric.WithLabelValues(extension).Inc()
}
