package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/mohae/deepcopy"
	"github.com/pkg/errors"
	klog "k8s.io/klog/v2"

	api "github.com/SAP/stewardci-provenance/pkg/apis/provenance/v1alpha1"
	"github.com/SAP/stewardci-provenance/pkg/featureflag"
	"github.com/SAP/stewardci-provenance/pkg/fingerprint/metrics"
)

// memoryStore is a Store keeping all data in memory.
type memoryStore struct {
	clock clock.Clock

	lock    sync.RWMutex
	entries map[string]*api.RegistryEntry
	records map[api.BuildRef]api.FingerprintRecord
}

// Compiler check for interface compliance
var _ Store = (*memoryStore)(nil)

// NewMemoryStore creates an empty Store that keeps its data in memory
// for the lifetime of the process.
func NewMemoryStore() Store {
	return newMemoryStore(clock.New())
}

func newMemoryStore(clock clock.Clock) *memoryStore {
	return &memoryStore{
		clock:   clock,
		entries: map[string]*api.RegistryEntry{},
		records: map[api.BuildRef]api.FingerprintRecord{},
	}
}

// Resolve implements fingerprint.Resolver.
func (s *memoryStore) Resolve(ctx context.Context, digest string) (*api.RegistryEntry, bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	entry, ok := s.entries[digest]
	if !ok {
		return nil, false, nil
	}
	return copyEntry(entry), true, nil
}

// Record implements Registry.
func (s *memoryStore) Record(ctx context.Context, digest, fileName string, build api.BuildRef) (*api.RegistryEntry, error) {
	if err := ValidateEntry(digest, fileName, build); err != nil {
		return nil, errors.Wrapf(err, "cannot record file %q of build %s", fileName, build)
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	entry, ok := s.entries[digest]
	if !ok {
		entry = &api.RegistryEntry{
			Digest:    digest,
			FileName:  fileName,
			Original:  build,
			Timestamp: s.clock.Now().UTC(),
			Usages:    []api.BuildRef{build},
		}
		s.entries[digest] = entry
		metrics.EntriesCreated.Inc()
		klog.FromContext(ctx).V(3).Info("Registered new fingerprint",
			"digest", digest, "fileName", fileName, "build", build.String())
	} else if featureflag.TrackUsages.Enabled() && !entry.HasUsage(build) {
		entry.Usages = append(entry.Usages, build)
	}
	return copyEntry(entry), nil
}

// GetFingerprintRecord implements fingerprint.RecordSource.
func (s *memoryStore) GetFingerprintRecord(ctx context.Context, build api.BuildRef) (api.FingerprintRecord, bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	record, ok := s.records[build]
	if !ok {
		return nil, false, nil
	}
	return deepcopy.Copy(record).(api.FingerprintRecord), true, nil
}

// AttachRecord implements RecordStore.
func (s *memoryStore) AttachRecord(ctx context.Context, build api.BuildRef, record api.FingerprintRecord) error {
	if err := ValidateRecord(build, record); err != nil {
		return err
	}
	copied := api.FingerprintRecord{}
	for fileName, digest := range record {
		copied[fileName] = digest
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.records[build] = copied
	return nil
}

// ListBuilds implements RecordStore.
func (s *memoryStore) ListBuilds(ctx context.Context, job string) ([]api.BuildRef, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	result := []api.BuildRef{}
	for build := range s.records {
		if build.Job == job {
			result = append(result, build)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Number < result[j].Number
	})
	return result, nil
}

func copyEntry(entry *api.RegistryEntry) *api.RegistryEntry {
	return deepcopy.Copy(entry).(*api.RegistryEntry)
}
