package chartstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/qiwen/epichart/internal/domain/timeline"
)

func testSnapshot() timeline.PredictResult {
	return timeline.PredictResult{
		CutDate: "2024-04-01",
		History: []timeline.HistoryPoint{
			{Date: "2024-03-25", Value: 5, Source: timeline.SourceObserved},
		},
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, ok, err := store.GetSnapshot(ctx, "sg-east")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.SaveSnapshot(ctx, "sg-east", testSnapshot(), 0))

	snap, ok, err := store.GetSnapshot(ctx, "sg-east")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "2024-04-01", snap.CutDate)
	require.Len(t, snap.History, 1)
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.SaveSnapshot(ctx, "sg-east", testSnapshot(), time.Nanosecond))
	time.Sleep(time.Millisecond)

	_, ok, err := store.GetSnapshot(ctx, "sg-east")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreInvalidate(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.SaveSnapshot(ctx, "sg-east", testSnapshot(), 0))
	require.NoError(t, store.InvalidateSnapshot(ctx, "sg-east"))

	_, ok, err := store.GetSnapshot(ctx, "sg-east")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreEmptyRegionID(t *testing.T) {
	store := NewMemoryStore()
	_, ok, err := store.GetSnapshot(context.Background(), "")
	require.NoError(t, err)
	require.False(t, ok)
}
