package metrics

import "github.com/SAP/stewardci-provenance/pkg/metrics"

const (
	subsystem = metrics.Subsystem + "_fingerprints"

	resultSuccess = "success"
)
