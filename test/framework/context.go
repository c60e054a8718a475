package framework

import (
	"context"
)

type contextKey string

const (
	buildKey    contextKey = "build"
	testNameKey contextKey = "testName"
)

// GetBuild returns the running build from the context
func GetBuild(ctx context.Context) *Build {
	return ctx.Value(buildKey).(*Build)
}

// SetBuild returns a context with the running build
func SetBuild(ctx context.Context, build *Build) context.Context {
	return context.WithValue(ctx, buildKey, build)
}

// GetTestName returns the test Name from the context
func GetTestName(ctx context.Context) string {
	return ctx.Value(testNameKey).(string)
}

// SetTestName sets the test Name to the context
func SetTestName(ctx context.Context, Name string) context.Context {
	return context.WithValue(ctx, testNameKey, Name)
}
