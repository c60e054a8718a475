package framework

import (
	"context"
	"time"
)

const (
	defaultInterval = 50 * time.Millisecond
)

const (
	waitIntervalKey contextKey = "waitInterval"
)

// GetWaitInterval returns the interval WaitFor polls with.
// Defaults to 50ms if nothing was set
func GetWaitInterval(ctx context.Context) time.Duration {
	interval, ok := ctx.Value(waitIntervalKey).(time.Duration)
	if !ok {
		return defaultInterval
	}
	return interval
}

// SetWaitInterval sets the poll interval of WaitFor to the context
func SetWaitInterval(ctx context.Context, interval time.Duration) context.Context {
	return context.WithValue(ctx, waitIntervalKey, interval)
}
