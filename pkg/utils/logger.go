package utils

import (
	"context"

	klog "k8s.io/klog/v2"
)

// NewLoggingContext returns a context derived from ctx carrying the
// logger of ctx extended by name and the key-value pairs kvs.
// If ctx has no logger, the klog background logger is extended.
// An empty name keeps the logger name, e.g. "ingest" extends a logger
// named "server" to "server/ingest".
func NewLoggingContext(ctx context.Context, name string, kvs ...interface{}) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := klog.FromContext(ctx)
	if name != "" {
		logger = klog.LoggerWithName(logger, name)
	}
	if len(kvs) > 0 {
		logger = klog.LoggerWithValues(logger, kvs...)
	}
	return klog.NewContext(ctx, logger)
}
