package metrics

import (
	metricswq "github.com/SAP/stewardci-provenance/pkg/metrics/workqueue"
)

func init() {
	metricswq.RegisterSubsystem(WorkqueueName, subsystemForWorkqueue)
}
