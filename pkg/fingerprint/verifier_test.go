package fingerprint

import (
	"context"
	"fmt"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/davecgh/go-spew/spew"
	gomock "github.com/golang/mock/gomock"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	api "github.com/SAP/stewardci-provenance/pkg/apis/provenance/v1alpha1"
	stewarderrors "github.com/SAP/stewardci-provenance/pkg/errors"
	"github.com/SAP/stewardci-provenance/pkg/fingerprint/mocks"
)

const (
	digest1 = "d1"
	digest9 = "d9"
)

type fakeRecords map[api.BuildRef]api.FingerprintRecord

func (f fakeRecords) GetFingerprintRecord(_ context.Context, build api.BuildRef) (api.FingerprintRecord, bool, error) {
	record, ok := f[build]
	return record, ok, nil
}

type fakeRegistry map[string]*api.RegistryEntry

func (f fakeRegistry) Resolve(_ context.Context, digest string) (*api.RegistryEntry, bool, error) {
	entry, ok := f[digest]
	return entry, ok, nil
}

func newTestVerifier(records RecordSource, registry Resolver) *Verifier {
	examinee := NewVerifier(records, registry)
	examinee.clock = clock.NewMock()
	return examinee
}

// scenarioFixture is pipeline "P1" build #3 producing "app.jar" with
// digest "d1", registered with P1#3 as original.
func scenarioFixture() (fakeRecords, fakeRegistry) {
	build := api.BuildRef{Job: "P1", Number: 3}
	records := fakeRecords{
		build: {"app.jar": digest1},
	}
	registry := fakeRegistry{
		digest1: {Digest: digest1, FileName: "app.jar", Original: build, Usages: []api.BuildRef{build}},
	}
	return records, registry
}

func Test_Verifier_Verify_Success(t *testing.T) {
	t.Parallel()

	// SETUP
	records, registry := scenarioFixture()
	examinee := newTestVerifier(records, registry)

	// EXERCISE
	err := examinee.Verify(context.Background(), JobName("P1"), BuildNumber(3), "app.jar")

	// VERIFY
	assert.NilError(t, err)
}

func Test_Verifier_Verify_Failures(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name         string
		patch        func(fakeRecords, fakeRegistry)
		build        BuildNumber
		fileName     string
		expectedErr  error
		expectedKind api.FailureKind
	}{
		{
			name: "content reused from earlier build",
			patch: func(_ fakeRecords, reg fakeRegistry) {
				reg[digest1].Original = api.BuildRef{Job: "P1", Number: 2}
			},
			build:        3,
			fileName:     "app.jar",
			expectedErr:  ErrProvenanceMismatch,
			expectedKind: api.FailureKindProvenanceMismatch,
		},
		{
			name: "content first produced by other job",
			patch: func(_ fakeRecords, reg fakeRegistry) {
				reg[digest1].Original = api.BuildRef{Job: "P0", Number: 3}
			},
			build:        3,
			fileName:     "app.jar",
			expectedErr:  ErrProvenanceMismatch,
			expectedKind: api.FailureKindProvenanceMismatch,
		},
		{
			name:         "file not in record",
			build:        3,
			fileName:     "missing.jar",
			expectedErr:  ErrFileNotFingerprinted,
			expectedKind: api.FailureKindFileNotFingerprinted,
		},
		{
			name: "empty digest in record",
			patch: func(rec fakeRecords, _ fakeRegistry) {
				rec[api.BuildRef{Job: "P1", Number: 3}]["empty.jar"] = ""
			},
			build:        3,
			fileName:     "empty.jar",
			expectedErr:  ErrFileNotFingerprinted,
			expectedKind: api.FailureKindFileNotFingerprinted,
		},
		{
			name: "digest unknown to registry",
			patch: func(rec fakeRecords, _ fakeRegistry) {
				rec[api.BuildRef{Job: "P1", Number: 3}]["app.jar"] = digest9
			},
			build:        3,
			fileName:     "app.jar",
			expectedErr:  ErrUnknownFingerprint,
			expectedKind: api.FailureKindUnknownFingerprint,
		},
		{
			name: "file name differs in case",
			patch: func(_ fakeRecords, reg fakeRegistry) {
				reg[digest1].FileName = "App.JAR"
			},
			build:        3,
			fileName:     "app.jar",
			expectedErr:  ErrFileNameMismatch,
			expectedKind: api.FailureKindFileNameMismatch,
		},
		{
			name:         "build without record",
			build:        4,
			fileName:     "app.jar",
			expectedErr:  ErrMissingFingerprintRecord,
			expectedKind: api.FailureKindMissingFingerprintRecord,
		},
		{
			name: "build with empty record",
			patch: func(rec fakeRecords, _ fakeRegistry) {
				rec[api.BuildRef{Job: "P1", Number: 4}] = api.FingerprintRecord{}
			},
			build:        4,
			fileName:     "app.jar",
			expectedErr:  ErrFileNotFingerprinted,
			expectedKind: api.FailureKindFileNotFingerprinted,
		},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// SETUP
			records, registry := scenarioFixture()
			if tc.patch != nil {
				tc.patch(records, registry)
			}
			examinee := newTestVerifier(records, registry)

			// EXERCISE
			err := examinee.Verify(context.Background(), JobName("P1"), tc.build, tc.fileName)

			// VERIFY
			assert.ErrorIs(t, err, tc.expectedErr, spew.Sdump(records, registry))
			assert.Equal(t, tc.expectedKind, FailureKindOf(err))
			assert.Equal(t, api.ErrorClassContent, stewarderrors.GetClass(err))
			assert.Assert(t, !stewarderrors.IsRecoverable(err))
		})
	}
}

func Test_Verifier_Verify_EmptyFileName_NoLookup(t *testing.T) {
	t.Parallel()

	// SETUP
	mockCtrl := gomock.NewController(t)
	records := mocks.NewMockRecordSource(mockCtrl)
	registry := mocks.NewMockResolver(mockCtrl)
	// no calls expected on records and registry
	examinee := newTestVerifier(records, registry)

	// EXERCISE
	err := examinee.Verify(context.Background(), JobName("P1"), BuildNumber(3), "")

	// VERIFY
	assert.ErrorIs(t, err, ErrEmptyFileName)
	assert.Equal(t, api.FailureKindEmptyFileName, FailureKindOf(err))
}

func Test_Verifier_Verify_UsesIdentityAccessors(t *testing.T) {
	t.Parallel()

	// SETUP
	mockCtrl := gomock.NewController(t)
	pipeline := mocks.NewMockPipeline(mockCtrl)
	pipeline.EXPECT().GetName().Return("P1").Times(1)
	build := mocks.NewMockBuild(mockCtrl)
	build.EXPECT().GetNumber().Return(3).Times(1)

	records, registry := scenarioFixture()
	examinee := newTestVerifier(records, registry)

	// EXERCISE
	err := examinee.Verify(context.Background(), pipeline, build, "app.jar")

	// VERIFY
	assert.NilError(t, err)
}

func Test_Verifier_Verify_NilIdentity(t *testing.T) {
	t.Parallel()

	// SETUP
	records, registry := scenarioFixture()
	examinee := newTestVerifier(records, registry)

	// EXERCISE
	err1 := examinee.Verify(context.Background(), nil, BuildNumber(3), "app.jar")
	err2 := examinee.Verify(context.Background(), JobName("P1"), nil, "app.jar")

	// VERIFY
	assert.ErrorContains(t, err1, "must not be nil")
	assert.ErrorContains(t, err2, "must not be nil")
}

type pointerPipeline struct {
	name string
}

func (p *pointerPipeline) GetName() string {
	return p.name
}

type pointerBuild struct {
	number int
}

func (b *pointerBuild) GetNumber() int {
	return b.number
}

func Test_Verifier_Verify_TypedNilIdentity(t *testing.T) {
	t.Parallel()

	// SETUP
	records, registry := scenarioFixture()
	examinee := newTestVerifier(records, registry)

	// EXERCISE
	err1 := examinee.Verify(context.Background(), (*pointerPipeline)(nil), BuildNumber(3), "app.jar")
	err2 := examinee.Verify(context.Background(), &pointerPipeline{name: "P1"}, (*pointerBuild)(nil), "app.jar")

	// VERIFY
	assert.ErrorContains(t, err1, "must not be nil")
	assert.ErrorContains(t, err2, "must not be nil")
	assert.Equal(t, api.FailureKindError, FailureKindOf(err1))
}

func Test_Verifier_Verify_RecordSourceError(t *testing.T) {
	t.Parallel()

	// SETUP
	mockCtrl := gomock.NewController(t)
	cause := stewarderrors.Infra(fmt.Errorf("database is locked"))
	records := mocks.NewMockRecordSource(mockCtrl)
	records.EXPECT().
		GetFingerprintRecord(gomock.Any(), api.BuildRef{Job: "P1", Number: 3}).
		Return(nil, false, cause).
		Times(1)
	registry := mocks.NewMockResolver(mockCtrl)
	examinee := newTestVerifier(records, registry)

	// EXERCISE
	err := examinee.Verify(context.Background(), JobName("P1"), BuildNumber(3), "app.jar")

	// VERIFY
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, api.FailureKindError, FailureKindOf(err))
	assert.Equal(t, api.ErrorClassInfra, stewarderrors.GetClass(err))
	assert.Assert(t, stewarderrors.IsRecoverable(err))
}

func Test_Verifier_Verify_ResolverError(t *testing.T) {
	t.Parallel()

	// SETUP
	mockCtrl := gomock.NewController(t)
	records := mocks.NewMockRecordSource(mockCtrl)
	records.EXPECT().
		GetFingerprintRecord(gomock.Any(), gomock.Any()).
		Return(api.FingerprintRecord{"app.jar": digest1}, true, nil)
	registry := mocks.NewMockResolver(mockCtrl)
	registry.EXPECT().
		Resolve(gomock.Any(), digest1).
		Return(nil, false, fmt.Errorf("connection reset"))
	examinee := newTestVerifier(records, registry)

	// EXERCISE
	err := examinee.Verify(context.Background(), JobName("P1"), BuildNumber(3), "app.jar")

	// VERIFY
	assert.ErrorContains(t, err, "failed to resolve fingerprint d1: connection reset")
	assert.Equal(t, api.FailureKindError, FailureKindOf(err))
	assert.Equal(t, api.ErrorClassInfra, stewarderrors.GetClass(err))
	assert.Assert(t, stewarderrors.IsRecoverable(err))
}

func Test_Verifier_Verify_RecordSourceErrorKeepsClass(t *testing.T) {
	t.Parallel()

	// SETUP
	mockCtrl := gomock.NewController(t)
	records := mocks.NewMockRecordSource(mockCtrl)
	records.EXPECT().
		GetFingerprintRecord(gomock.Any(), gomock.Any()).
		Return(nil, false, stewarderrors.Config(fmt.Errorf("no database configured")))
	registry := mocks.NewMockResolver(mockCtrl)
	examinee := newTestVerifier(records, registry)

	// EXERCISE
	err := examinee.Verify(context.Background(), JobName("P1"), BuildNumber(3), "app.jar")

	// VERIFY
	assert.Equal(t, api.FailureKindError, FailureKindOf(err))
	assert.Equal(t, api.ErrorClassConfig, stewarderrors.GetClass(err))
	assert.Assert(t, !stewarderrors.IsRecoverable(err))
}

func Test_Verifier_Verify_Idempotent(t *testing.T) {
	t.Parallel()

	// SETUP
	records, registry := scenarioFixture()
	registry[digest1].Original = api.BuildRef{Job: "P1", Number: 2}
	examinee := newTestVerifier(records, registry)

	// EXERCISE
	var kinds []api.FailureKind
	for i := 0; i < 3; i++ {
		err := examinee.Verify(context.Background(), JobName("P1"), BuildNumber(3), "app.jar")
		kinds = append(kinds, FailureKindOf(err))
	}

	// VERIFY
	assert.Assert(t, is.DeepEqual(kinds, []api.FailureKind{
		api.FailureKindProvenanceMismatch,
		api.FailureKindProvenanceMismatch,
		api.FailureKindProvenanceMismatch,
	}))
	assert.Equal(t, api.BuildRef{Job: "P1", Number: 2}, registry[digest1].Original)
}

func Test_Verifier_Verify_ErrorMessages(t *testing.T) {
	t.Parallel()

	// SETUP
	records, registry := scenarioFixture()
	registry[digest1].Original = api.BuildRef{Job: "P1", Number: 2}
	examinee := newTestVerifier(records, registry)

	// EXERCISE
	err := examinee.Verify(context.Background(), JobName("P1"), BuildNumber(3), "app.jar")

	// VERIFY
	assert.Error(t, err, `fingerprint d1 of file "app.jar": expected original build P1#3, registered P1#2: registered original build does not match`)
}

func Test_FailureKindOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, api.FailureKindNone, FailureKindOf(nil))
	assert.Equal(t, api.FailureKindError, FailureKindOf(fmt.Errorf("other")))
	assert.Equal(t, api.FailureKindUnknownFingerprint, FailureKindOf(fmt.Errorf("wrapped: %w", ErrUnknownFingerprint)))
}
