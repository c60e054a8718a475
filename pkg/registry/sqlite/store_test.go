package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	api "github.com/SAP/stewardci-provenance/pkg/apis/provenance/v1alpha1"
	stewarderrors "github.com/SAP/stewardci-provenance/pkg/errors"
	"github.com/SAP/stewardci-provenance/pkg/featureflag"
	featureflagtesting "github.com/SAP/stewardci-provenance/pkg/featureflag/testing"
)

const (
	digestA = "0cc175b9c0f1b6a831c399e269772661"
	digestB = "92eb5ffee6ae2fec3ad71c777531578f"
)

var (
	buildP1n2 = api.BuildRef{Job: "P1", Number: 2}
	buildP1n3 = api.BuildRef{Job: "P1", Number: 3}
	buildP2n1 = api.BuildRef{Job: "P2", Number: 1}
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "registry.db")
	store, err := Open(context.Background(), path)
	assert.NilError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func Test_Store_Record_FirstWriterWins(t *testing.T) {
	// SETUP
	ctx := context.Background()
	examinee, _ := openTestStore(t)
	mockClock := clock.NewMock()
	mockClock.Set(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	examinee.clock = mockClock

	// EXERCISE
	first, err := examinee.Record(ctx, digestA, "app.jar", buildP1n2)
	assert.NilError(t, err)
	mockClock.Add(time.Hour)
	second, err := examinee.Record(ctx, digestA, "other.jar", buildP2n1)
	assert.NilError(t, err)

	// VERIFY
	assert.Equal(t, buildP1n2, first.Original)
	assert.Equal(t, buildP1n2, second.Original)
	assert.Equal(t, "app.jar", second.FileName)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), second.Timestamp)
	assert.DeepEqual(t, []api.BuildRef{buildP1n2, buildP2n1}, second.Usages)
}

func Test_Store_Record_UsageRecordedOnce(t *testing.T) {
	// SETUP
	ctx := context.Background()
	examinee, _ := openTestStore(t)

	// EXERCISE
	for i := 0; i < 3; i++ {
		_, err := examinee.Record(ctx, digestA, "app.jar", buildP1n3)
		assert.NilError(t, err)
	}

	// VERIFY
	entry, ok, err := examinee.Resolve(ctx, digestA)
	assert.NilError(t, err)
	assert.Assert(t, ok)
	assert.DeepEqual(t, []api.BuildRef{buildP1n3}, entry.Usages)
}

func Test_Store_Record_TrackUsagesDisabled(t *testing.T) {
	// no parallel: patching feature flag
	featureflagtesting.SetFeatureFlag(t, featureflag.TrackUsages, false)

	// SETUP
	ctx := context.Background()
	examinee, _ := openTestStore(t)

	// EXERCISE
	_, err := examinee.Record(ctx, digestA, "app.jar", buildP1n2)
	assert.NilError(t, err)
	entry, err := examinee.Record(ctx, digestA, "app.jar", buildP2n1)
	assert.NilError(t, err)

	// VERIFY
	assert.DeepEqual(t, []api.BuildRef{buildP1n2}, entry.Usages)
}

func Test_Store_Record_InvalidInput(t *testing.T) {
	for _, tc := range []struct {
		name     string
		digest   string
		fileName string
		build    api.BuildRef
	}{
		{"EmptyDigest", "", "app.jar", buildP1n2},
		{"MalformedDigest", "xyz", "app.jar", buildP1n2},
		{"EmptyFileName", digestA, "", buildP1n2},
		{"EmptyJob", digestA, "app.jar", api.BuildRef{Number: 1}},
		{"ZeroNumber", digestA, "app.jar", api.BuildRef{Job: "P1"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// SETUP
			ctx := context.Background()
			examinee, _ := openTestStore(t)

			// EXERCISE
			entry, err := examinee.Record(ctx, tc.digest, tc.fileName, tc.build)

			// VERIFY
			assert.Assert(t, entry == nil)
			assert.Equal(t, api.ErrorClassContent, stewarderrors.GetClass(err))
		})
	}
}

func Test_Store_Resolve_Unknown(t *testing.T) {
	// SETUP
	examinee, _ := openTestStore(t)

	// EXERCISE
	entry, ok, err := examinee.Resolve(context.Background(), digestB)

	// VERIFY
	assert.NilError(t, err)
	assert.Assert(t, !ok)
	assert.Assert(t, entry == nil)
}

func Test_Store_AttachRecord(t *testing.T) {
	// SETUP
	ctx := context.Background()
	examinee, _ := openTestStore(t)
	record := api.FingerprintRecord{"app.jar": digestA, "app.pom": digestB}

	// EXERCISE
	err := examinee.AttachRecord(ctx, buildP1n2, record)
	assert.NilError(t, err)

	// VERIFY
	result, ok, err := examinee.GetFingerprintRecord(ctx, buildP1n2)
	assert.NilError(t, err)
	assert.Assert(t, ok)
	assert.DeepEqual(t, record, result)

	_, ok, err = examinee.GetFingerprintRecord(ctx, buildP1n3)
	assert.NilError(t, err)
	assert.Assert(t, !ok)
}

func Test_Store_AttachRecord_Replaces(t *testing.T) {
	// SETUP
	ctx := context.Background()
	examinee, _ := openTestStore(t)
	assert.NilError(t, examinee.AttachRecord(ctx, buildP1n2, api.FingerprintRecord{"app.jar": digestA}))

	// EXERCISE
	err := examinee.AttachRecord(ctx, buildP1n2, api.FingerprintRecord{"lib.jar": digestB})

	// VERIFY
	assert.NilError(t, err)
	result, _, err := examinee.GetFingerprintRecord(ctx, buildP1n2)
	assert.NilError(t, err)
	assert.DeepEqual(t, api.FingerprintRecord{"lib.jar": digestB}, result)
}

func Test_Store_AttachRecord_Empty(t *testing.T) {
	// SETUP
	ctx := context.Background()
	examinee, _ := openTestStore(t)

	// EXERCISE
	err := examinee.AttachRecord(ctx, buildP1n2, api.FingerprintRecord{})

	// VERIFY
	assert.NilError(t, err)
	result, ok, err := examinee.GetFingerprintRecord(ctx, buildP1n2)
	assert.NilError(t, err)
	assert.Assert(t, ok)
	assert.Assert(t, is.Len(result, 0))
}

func Test_Store_ListBuilds(t *testing.T) {
	// SETUP
	ctx := context.Background()
	examinee, _ := openTestStore(t)
	for _, build := range []api.BuildRef{buildP1n3, buildP2n1, buildP1n2} {
		assert.NilError(t, examinee.AttachRecord(ctx, build, api.FingerprintRecord{}))
	}

	// EXERCISE
	result, err := examinee.ListBuilds(ctx, "P1")

	// VERIFY
	assert.NilError(t, err)
	assert.DeepEqual(t, []api.BuildRef{buildP1n2, buildP1n3}, result)

	result, err = examinee.ListBuilds(ctx, "unknown")
	assert.NilError(t, err)
	assert.Assert(t, is.Len(result, 0))
}

func Test_Store_Reopen_KeepsData(t *testing.T) {
	// SETUP
	ctx := context.Background()
	first, path := openTestStore(t)
	_, err := first.Record(ctx, digestA, "app.jar", buildP1n2)
	assert.NilError(t, err)
	assert.NilError(t, first.AttachRecord(ctx, buildP1n2, api.FingerprintRecord{"app.jar": digestA}))
	assert.NilError(t, first.Close())

	// EXERCISE
	second, err := Open(ctx, path)
	assert.NilError(t, err)
	defer second.Close()

	// VERIFY
	entry, ok, err := second.Resolve(ctx, digestA)
	assert.NilError(t, err)
	assert.Assert(t, ok)
	assert.Equal(t, buildP1n2, entry.Original)
	record, ok, err := second.GetFingerprintRecord(ctx, buildP1n2)
	assert.NilError(t, err)
	assert.Assert(t, ok)
	assert.Equal(t, digestA, record["app.jar"])
}

func Test_Store_Closed_ReturnsInfraError(t *testing.T) {
	// SETUP
	examinee, _ := openTestStore(t)
	assert.NilError(t, examinee.Close())

	// EXERCISE
	_, _, err := examinee.Resolve(context.Background(), digestA)

	// VERIFY
	assert.Equal(t, api.ErrorClassInfra, stewarderrors.GetClass(err))
	assert.Assert(t, stewarderrors.IsRecoverable(err))
}

func Test_Store_ConcurrentRecord(t *testing.T) {
	// SETUP
	ctx := context.Background()
	examinee, _ := openTestStore(t)
	var wg sync.WaitGroup

	// EXERCISE
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func(number int) {
			defer wg.Done()
			_, err := examinee.Record(ctx, digestA, fmt.Sprintf("app-%d.jar", number), api.BuildRef{Job: "P", Number: number})
			assert.Check(t, err)
		}(i)
	}
	wg.Wait()

	// VERIFY
	entry, ok, err := examinee.Resolve(ctx, digestA)
	assert.NilError(t, err)
	assert.Assert(t, ok)
	assert.Equal(t, fmt.Sprintf("app-%d.jar", entry.Original.Number), entry.FileName)
	assert.Assert(t, is.Len(entry.Usages, 10))
	assert.Equal(t, entry.Original, entry.Usages[0])
}
