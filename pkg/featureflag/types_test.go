/*
Copyright 2019 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package featureflag

import (
	"testing"

	"github.com/go-logr/logr"
	. "github.com/onsi/gomega"
	"k8s.io/klog/v2/ktesting"
)

// patchFlags replaces the known flags by an empty set until the test
// is finished.
func patchFlags(t *testing.T) {
	t.Helper()
	origFlags := flags
	t.Cleanup(func() { flags = origFlags })
	flags = make(map[string]*FeatureFlag)
}

func Test_ParseFlags_Toggle(t *testing.T) {
	// no parallel: patching global state
	patchFlags(t)

	for _, tc := range []struct {
		input    string
		expected bool
	}{
		{"-TrackUsages", false},
		{"TrackUsages", true},
		{"-TrackUsages", false},
		{"+TrackUsages", true},
		{"", true},
		{"ValidateDigests", true},
	} {
		// SETUP
		g := NewGomegaWithT(t)
		trackUsages := New("TrackUsages", Bool(true))

		// EXERCISE
		ParseFlags(tc.input)

		// VERIFY
		g.Expect(trackUsages.Enabled()).To(Equal(tc.expected), "after %q", tc.input)
	}
}

func Test_ParseFlags_EnvironmentReadOnce(t *testing.T) {
	// no parallel: patching global state
	patchFlags(t)

	// SETUP
	g := NewGomegaWithT(t)
	emptyFiles := New("FingerprintEmptyFiles", Bool(false))

	// EXERCISE
	t.Setenv(Name, "+FingerprintEmptyFiles")

	// VERIFY
	g.Expect(emptyFiles.Enabled()).To(BeFalse())

	// EXERCISE
	ParseFlags("+FingerprintEmptyFiles")

	// VERIFY
	g.Expect(emptyFiles.Enabled()).To(BeTrue())
}

func Test_ParseFlags_MultipleSeparators(t *testing.T) {
	// no parallel: patching global state
	patchFlags(t)

	// SETUP
	g := NewGomegaWithT(t)
	emptyFiles := New("FingerprintEmptyFiles", Bool(false))
	validate := New("ValidateDigests", Bool(true))
	unknown := New("NotYetDefined", nil)

	// EXERCISE
	ParseFlags(" +FingerprintEmptyFiles,\t-ValidateDigests ,, NotYetDefined ")

	// VERIFY
	g.Expect(emptyFiles.Enabled()).To(BeTrue())
	g.Expect(validate.Enabled()).To(BeFalse())
	g.Expect(unknown.Enabled()).To(BeTrue())
}

func Test_New_FirstDefaultWins(t *testing.T) {
	// no parallel: patching global state
	patchFlags(t)

	// SETUP
	g := NewGomegaWithT(t)
	ParseFlags("-TrackUsages")

	// EXERCISE
	first := New("TrackUsages", Bool(true))
	second := New("TrackUsages", Bool(false))

	// VERIFY
	g.Expect(second).To(BeIdenticalTo(first))
	g.Expect(*first.defaultValue).To(BeTrue())
	g.Expect(first.Enabled()).To(BeFalse())
}

func Test_Log(t *testing.T) {
	// no parallel: patching global state
	patchFlags(t)

	// SETUP
	g := NewGomegaWithT(t)
	New("ValidateDigests", Bool(true))
	New("TrackUsages", Bool(true))
	New("FingerprintEmptyFiles", Bool(false))
	ParseFlags("-TrackUsages")

	logger := ktesting.NewLogger(t, ktesting.NewConfig(ktesting.BufferLogs(true)))

	// EXERCISE
	Log(logger)

	// VERIFY
	logEntries := getTestLoggerEntries(t, logger)
	g.Expect(logEntries).To(HaveLen(3))
	for _, logEntry := range logEntries {
		g.Expect(logEntry.Type).To(Equal(ktesting.LogInfo))
		g.Expect(logEntry.Verbosity).To(Equal(0))
		g.Expect(logEntry.Message).To(Equal("Feature flag"))
		g.Expect(logEntry.Err).To(BeNil())
	}
	g.Expect(logEntries[0].ParameterKVList).To(HaveExactElements("key", "FingerprintEmptyFiles", "enabled", false))
	g.Expect(logEntries[1].ParameterKVList).To(HaveExactElements("key", "TrackUsages", "enabled", false))
	g.Expect(logEntries[2].ParameterKVList).To(HaveExactElements("key", "ValidateDigests", "enabled", true))
}

func Test_Log_NoFlags(t *testing.T) {
	// no parallel: patching global state
	patchFlags(t)

	// SETUP
	g := NewGomegaWithT(t)
	logger := ktesting.NewLogger(t, ktesting.NewConfig(ktesting.BufferLogs(true)))

	// EXERCISE
	Log(logger)

	// VERIFY
	g.Expect(getTestLoggerEntries(t, logger)).To(BeEmpty())
}

func getTestLoggerEntries(t *testing.T, logger logr.Logger) ktesting.Log {
	t.Helper()

	underlyingLogger, ok := logger.GetSink().(ktesting.Underlier)
	if !ok {
		t.Fatalf("should have had ktesting LogSink, got %T", logger.GetSink())
	}
	return underlyingLogger.GetBuffer().Data()
}

func Test_KnownFlags_Defaults(t *testing.T) {
	// SETUP
	g := NewGomegaWithT(t)

	// VERIFY
	for _, ff := range []*FeatureFlag{ValidateDigests, TrackUsages, FingerprintEmptyFiles} {
		g.Expect(*ff.defaultValue).To(Equal(ff != FingerprintEmptyFiles), ff.Key)
	}
}
