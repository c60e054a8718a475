package utils

import (
	"context"
	"testing"

	"gotest.tools/v3/assert"
	klog "k8s.io/klog/v2"
	"k8s.io/klog/v2/ktesting"
)

func Test_NewLoggingContext(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name         string
		baseName     string
		baseKVs      []interface{}
		newName      string
		newKVs       []interface{}
		expectedName string
		expectedKVs  []interface{}
	}{
		{
			name:         "values only",
			baseName:     "server",
			baseKVs:      []interface{}{"job", "P1"},
			newKVs:       []interface{}{"build", 2},
			expectedName: "server",
			expectedKVs:  []interface{}{"job", "P1", "build", 2},
		},
		{
			name:         "name only",
			baseName:     "server",
			baseKVs:      []interface{}{"job", "P1"},
			newName:      "ingest",
			expectedName: "server/ingest",
			expectedKVs:  []interface{}{"job", "P1"},
		},
		{
			name:         "name and values",
			baseName:     "server",
			newName:      "ingest",
			newKVs:       []interface{}{"build", "P1#2"},
			expectedName: "server/ingest",
			expectedKVs:  []interface{}{"build", "P1#2"},
		},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// SETUP
			base := ktesting.NewLogger(t, ktesting.NewConfig(ktesting.BufferLogs(true)))
			base = klog.LoggerWithName(base, tc.baseName)
			if tc.baseKVs != nil {
				base = klog.LoggerWithValues(base, tc.baseKVs...)
			}
			ctx := klog.NewContext(context.Background(), base)

			// EXERCISE
			ctx = NewLoggingContext(ctx, tc.newName, tc.newKVs...)

			// VERIFY
			logger := klog.FromContext(ctx)
			logger.Info("message")
			underlier, ok := logger.GetSink().(ktesting.Underlier)
			assert.Assert(t, ok, "unexpected sink %T", logger.GetSink())
			logs := underlier.GetBuffer().Data()
			assert.Equal(t, 1, len(logs))
			assert.Equal(t, "message", logs[0].Message)
			assert.Equal(t, tc.expectedName, logs[0].Prefix)
			assert.DeepEqual(t, tc.expectedKVs, logs[0].WithKVList)
		})
	}
}

func Test_NewLoggingContext_NilContext(t *testing.T) {
	t.Parallel()

	// EXERCISE
	ctx := NewLoggingContext(nil, "sub", "foo", 111)

	// VERIFY
	assert.Assert(t, ctx != nil)
	klog.FromContext(ctx).V(10).Info("does not panic")
}
