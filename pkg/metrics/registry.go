package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	registryLock sync.RWMutex
	registry     = newRegistry()
)

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewPedanticRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Registerer returns the registerer for metrics exported by the metrics
// server.
func Registerer() prometheus.Registerer {
	registryLock.RLock()
	defer registryLock.RUnlock()
	return registry
}

// Gatherer returns the gatherer the metrics server exports.
func Gatherer() prometheus.Gatherer {
	registryLock.RLock()
	defer registryLock.RUnlock()
	return registry
}

// Testing provides utility functions for testing with this package.
// Do not use it for non-testing purposes!
type Testing struct{}

// PatchRegistry makes replacement the registry of this package until
// the returned function is called.
// Nested patches must be reverted in reverse order.
func (Testing) PatchRegistry(replacement *prometheus.Registry) func() {
	registryLock.Lock()
	defer registryLock.Unlock()
	previous := registry
	registry = replacement
	return func() {
		registryLock.Lock()
		defer registryLock.Unlock()
		if registry != replacement {
			panic("metrics registry patches reverted out of order")
		}
		registry = previous
	}
}
