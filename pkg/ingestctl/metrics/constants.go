package metrics

import "github.com/SAP/stewardci-provenance/pkg/metrics"

const (
	subsystem             = metrics.Subsystem + "_ingest"
	subsystemForWorkqueue = subsystem + "_workqueue"

	// WorkqueueName is the name of the ingest controller workqueue.
	// It is required by the metrics adapter for workqueues.
	WorkqueueName = "ingestctl"

	// ResultSuccess is the result of a report ingested successfully.
	ResultSuccess = "success"
	// ResultRetry is the result of a failed attempt that is retried.
	ResultRetry = "retry"
	// ResultDropped is the result of a report that has been given up.
	ResultDropped = "dropped"
	// ResultDeferred is the result of a report postponed because of
	// maintenance mode.
	ResultDeferred = "deferred"
)
