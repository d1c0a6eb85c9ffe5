package chartstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/qiwen/epichart/internal/domain/timeline"
)

// ValkeyStore keeps per-region snapshots in a Valkey-compatible database so
// multiple service replicas share the same last-fetched payload.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a snapshot store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "epichart"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) GetSnapshot(ctx context.Context, regionID string) (timeline.PredictResult, bool, error) {
	if regionID == "" {
		return timeline.PredictResult{}, false, nil
	}
	cmd := s.client.B().Get().Key(s.snapshotKey(regionID)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return timeline.PredictResult{}, false, nil
		}
		return timeline.PredictResult{}, false, err
	}
	var snap timeline.PredictResult
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return timeline.PredictResult{}, false, err
	}
	return snap, true, nil
}

func (s *ValkeyStore) SaveSnapshot(ctx context.Context, regionID string, snap timeline.PredictResult, ttl time.Duration) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.snapshotKey(regionID)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) InvalidateSnapshot(ctx context.Context, regionID string) error {
	cmd := s.client.B().Del().Key(s.snapshotKey(regionID)).Build()
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) snapshotKey(regionID string) string {
	return fmt.Sprintf("%s:snapshot:%s", s.prefix, regionID)
}

var _ timeline.Store = (*ValkeyStore)(nil)
