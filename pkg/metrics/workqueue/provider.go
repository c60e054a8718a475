package workqueue

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"k8s.io/client-go/util/workqueue"

	"github.com/SAP/stewardci-provenance/pkg/metrics"
)

func init() {
	workqueue.SetProvider(provider)
}

var provider = &prometheusMetricsProvider{
	subsystems: map[string]string{},
	metrics:    map[string]prometheus.Collector{},
}

// RegisterSubsystem maps the workqueue named queueName to subsystem.
// Registering a queue name twice panics.
func RegisterSubsystem(queueName, subsystem string) {
	provider.lock.Lock()
	defer provider.lock.Unlock()
	if existing, ok := provider.subsystems[queueName]; ok {
		panic(fmt.Sprintf("workqueue %q is already mapped to subsystem %q", queueName, existing))
	}
	provider.subsystems[queueName] = subsystem
}

// durationBuckets ranges from 1ms to 5000s.
func durationBuckets() []float64 {
	list := make([]float64, 0, 14)
	for i := 1e-3; i <= 1e+3; i *= 10.0 {
		list = append(list, i, i*5.0)
	}
	return list
}

type prometheusMetricsProvider struct {
	lock       sync.Mutex
	subsystems map[string]string
	metrics    map[string]prometheus.Collector
}

// collector returns the metric with the given name of the queue,
// creating and registering it on first use.
func (p *prometheusMetricsProvider) collector(queueName, name string, create func(prometheus.Opts) prometheus.Collector) prometheus.Collector {
	p.lock.Lock()
	defer p.lock.Unlock()
	subsystem, ok := p.subsystems[queueName]
	if !ok {
		panic(fmt.Sprintf("no metrics subsystem registered for workqueue %q", queueName))
	}
	key := subsystem + "_" + name
	if metric, ok := p.metrics[key]; ok {
		return metric
	}
	metric := create(prometheus.Opts{Subsystem: subsystem, Name: name})
	metrics.Registerer().MustRegister(metric)
	p.metrics[key] = metric
	return metric
}

func (p *prometheusMetricsProvider) gauge(queueName, name, help string) prometheus.Gauge {
	return p.collector(queueName, name, func(opts prometheus.Opts) prometheus.Collector {
		opts.Help = help
		return prometheus.NewGauge(prometheus.GaugeOpts(opts))
	}).(prometheus.Gauge)
}

func (p *prometheusMetricsProvider) counter(queueName, name, help string) prometheus.Counter {
	return p.collector(queueName, name, func(opts prometheus.Opts) prometheus.Collector {
		opts.Help = help
		return prometheus.NewCounter(prometheus.CounterOpts(opts))
	}).(prometheus.Counter)
}

func (p *prometheusMetricsProvider) histogram(queueName, name, help string) prometheus.Histogram {
	return p.collector(queueName, name, func(opts prometheus.Opts) prometheus.Collector {
		return prometheus.NewHistogram(prometheus.HistogramOpts{
			Subsystem: opts.Subsystem,
			Name:      opts.Name,
			Help:      help,
			Buckets:   durationBuckets(),
		})
	}).(prometheus.Histogram)
}

func (p *prometheusMetricsProvider) NewDepthMetric(queueName string) workqueue.GaugeMetric {
	return p.gauge(queueName, "depth", "Number of reports waiting in the queue.")
}

func (p *prometheusMetricsProvider) NewAddsMetric(queueName string) workqueue.CounterMetric {
	return p.counter(queueName, "adds_total", "Number of items added to the queue.")
}

func (p *prometheusMetricsProvider) NewLatencyMetric(queueName string) workqueue.HistogramMetric {
	return p.histogram(queueName, "latency_seconds",
		"Time in seconds items wait in the queue until processing starts.")
}

func (p *prometheusMetricsProvider) NewWorkDurationMetric(queueName string) workqueue.HistogramMetric {
	return p.histogram(queueName, "workduration_seconds",
		"Time in seconds spent processing an item.")
}

func (p *prometheusMetricsProvider) NewUnfinishedWorkSecondsMetric(queueName string) workqueue.SettableGaugeMetric {
	return p.gauge(queueName, "unfinished_workduration_seconds",
		"Processing time in seconds spent on items not finished yet.")
}

func (p *prometheusMetricsProvider) NewLongestRunningProcessorSecondsMetric(queueName string) workqueue.SettableGaugeMetric {
	return p.gauge(queueName, "longest_running_processor_seconds",
		"Longest processing time in seconds of an item not finished yet.")
}

func (p *prometheusMetricsProvider) NewRetriesMetric(queueName string) workqueue.CounterMetric {
	return p.counter(queueName, "retry_count_total", "Number of items requeued rate limited.")
}
