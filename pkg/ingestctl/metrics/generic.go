package metrics

import "time"

// CounterMetric is a monotonic counter metric.
type CounterMetric interface {
	Inc()
}

// ResultsMetric counts processed items by result.
type ResultsMetric interface {
	Inc(result string)
}

// DurationMetric observes durations.
type DurationMetric interface {
	Observe(duration time.Duration)
}
