package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotDue(t *testing.T) {
	tests := []struct {
		version int
		due     bool
	}{
		{0, false},
		{1, false},
		{9, false},
		{10, true},
		{11, false},
		{20, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.due, SnapshotDue(tt.version), "version %d", tt.version)
	}
}

func TestSnapshot_JSONRoundTripKeepsState(t *testing.T) {
	state, err := json.Marshal(map[string]any{"variant_id": "var-1", "on_hand": 7})
	require.NoError(t, err)

	original := Snapshot{
		AggregateID:   "var-1",
		AggregateType: "Stock",
		Version:       10,
		State:         state,
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var restored Snapshot
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, original.AggregateID, restored.AggregateID)
	assert.Equal(t, original.Version, restored.Version)
	assert.JSONEq(t, string(original.State), string(restored.State))
	assert.True(t, original.CreatedAt.Equal(restored.CreatedAt))
}

// ============================================
// In-memory EventStore
// ============================================

func TestEventStore_GetEventsFromVersion(t *testing.T) {
	es := NewEventStore(nil)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := es.Append(ctx, "agg-1", "Stock", "StockAdded", i)
		require.NoError(t, err)
	}

	events, err := es.GetEventsFromVersion(ctx, "agg-1", 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, 3, events[0].Version)
	assert.Equal(t, 4, events[1].Version)
}

func TestEventStore_Snapshots(t *testing.T) {
	es := NewEventStore(nil)
	ctx := context.Background()

	snap, err := es.GetSnapshot(ctx, "agg-1")
	require.NoError(t, err)
	assert.Nil(t, snap)

	require.NoError(t, es.SaveSnapshot(ctx, &Snapshot{AggregateID: "agg-1", Version: 10, State: json.RawMessage(`{}`)}))

	snap, err = es.GetSnapshot(ctx, "agg-1")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 10, snap.Version)
}
