package spill

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang/snappy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamforge/streamforge/internal/storage"
	"github.com/streamforge/streamforge/pkg/types"
)

func newTestArchiver(t *testing.T) (*Archiver, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	a := NewArchiver(store)
	a.now = func() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC) }
	return a, store
}

func TestArchiveEventsRoundTrip(t *testing.T) {
	a, store := newTestArchiver(t)
	ctx := context.Background()

	events := []types.Event{
		{
			EventID:        101,
			UserID:         7,
			EventType:      "purchase",
			EventTimestamp: time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
			PageURL:        "/action/purchase",
			SessionID:      "sess-7-5806622",
			DeviceType:     "mobile",
			Browser:        "Firefox",
			Country:        "DE",
			Revenue:        129.99,
		},
		{EventID: 102, UserID: 9, EventType: "page_view", PageURL: "/home"},
	}

	key, err := a.ArchiveEvents(ctx, events)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "spill/events/20250314-093000-"), "key %q", key)
	assert.True(t, strings.HasSuffix(key, ".jsonl.snappy"), "key %q", key)

	compressed, err := store.Get(ctx, key)
	require.NoError(t, err)

	raw, err := snappy.Decode(nil, compressed)
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSuffix(raw, []byte("\n")), []byte("\n"))
	require.Len(t, lines, 2)

	var restored types.Event
	require.NoError(t, json.Unmarshal(lines[0], &restored))
	assert.Equal(t, events[0], restored)
}

func TestArchiveOrdersRoundTrip(t *testing.T) {
	a, store := newTestArchiver(t)
	ctx := context.Background()

	orders := []types.Order{
		{
			OrderID:        55,
			UserID:         7,
			ProductID:      31,
			Quantity:       2,
			OrderDate:      time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
			OrderTimestamp: time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
			TotalAmount:    88.5,
			Status:         "completed",
			PaymentMethod:  "paypal",
		},
	}

	key, err := a.ArchiveOrders(ctx, orders)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "spill/orders/"), "key %q", key)

	compressed, err := store.Get(ctx, key)
	require.NoError(t, err)

	raw, err := snappy.Decode(nil, compressed)
	require.NoError(t, err)

	var restored types.Order
	require.NoError(t, json.Unmarshal(bytes.TrimSuffix(raw, []byte("\n")), &restored))
	assert.Equal(t, orders[0], restored)
}

func TestArchiveEmptyBatchWritesNothing(t *testing.T) {
	a, store := newTestArchiver(t)
	ctx := context.Background()

	key, err := a.ArchiveEvents(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "", key)

	keys, err := store.List(ctx, "spill")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestArchiveKeysAreUnique(t *testing.T) {
	a, _ := newTestArchiver(t)
	ctx := context.Background()

	batch := []types.Event{{EventID: 1}}
	k1, err := a.ArchiveEvents(ctx, batch)
	require.NoError(t, err)
	k2, err := a.ArchiveEvents(ctx, batch)
	require.NoError(t, err)

	assert.NotEqual(t, k1, k2)
}
