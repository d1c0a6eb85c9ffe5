package chartstore

import (
	"context"
	"sync"
	"time"

	"github.com/qiwen/epichart/internal/domain/timeline"
)

type snapshotRecord struct {
	payload   timeline.PredictResult
	expiresAt time.Time
}

// MemoryStore is an in-process snapshot store for tests and single-instance
// deployments without Valkey.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]snapshotRecord
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]snapshotRecord)}
}

// GetSnapshot implements timeline.Store.
func (s *MemoryStore) GetSnapshot(_ context.Context, regionID string) (timeline.PredictResult, bool, error) {
	if regionID == "" {
		return timeline.PredictResult{}, false, nil
	}
	s.mu.RLock()
	record, ok := s.snapshots[regionID]
	s.mu.RUnlock()
	if !ok {
		return timeline.PredictResult{}, false, nil
	}
	if hasExpired(record.expiresAt) {
		s.mu.Lock()
		delete(s.snapshots, regionID)
		s.mu.Unlock()
		return timeline.PredictResult{}, false, nil
	}
	return record.payload, true, nil
}

// SaveSnapshot caches the raw fetched payload with optional TTL.
func (s *MemoryStore) SaveSnapshot(_ context.Context, regionID string, snap timeline.PredictResult, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp := time.Time{}
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.snapshots[regionID] = snapshotRecord{payload: snap, expiresAt: exp}
	return nil
}

// InvalidateSnapshot drops the cached payload for a region.
func (s *MemoryStore) InvalidateSnapshot(_ context.Context, regionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, regionID)
	return nil
}

func hasExpired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(time.Now())
}

var _ timeline.Store = (*MemoryStore)(nil)
