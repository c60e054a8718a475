package framework

import (
	"context"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	api "github.com/SAP/stewardci-provenance/pkg/apis/provenance/v1alpha1"
	"github.com/SAP/stewardci-provenance/pkg/fingerprint"
)

// WaitConditionFunc is a function waiting for a condition
// return true,nil if condition is fulfilled
// return false,nil if condition may be fulfilled in the future
// returns nil,error if condition is not fulfilled
type WaitConditionFunc func(context.Context) (bool, error)

// WaitFor waits for a condition until ctx is done.
// it returns the duration the waiting took
// it returns an error if condition cannot be fulfilled anymore
func WaitFor(ctx context.Context, conditionFunc WaitConditionFunc) (time.Duration, error) {
	startTime := time.Now()
	err := wait.PollUntilContextCancel(ctx, GetWaitInterval(ctx), true, wait.ConditionWithContextFunc(conditionFunc))
	return time.Since(startTime), err
}

// RecordAttached returns a condition fulfilled as soon as the build
// has a fingerprint record in source.
func RecordAttached(source fingerprint.RecordSource, build api.BuildRef) WaitConditionFunc {
	return func(ctx context.Context) (bool, error) {
		_, ok, err := source.GetFingerprintRecord(ctx, build)
		return ok, err
	}
}
