// Package integration provides end-to-end integration tests for Streamforge.
package integration

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang/snappy"

	"github.com/streamforge/streamforge/internal/config"
	"github.com/streamforge/streamforge/internal/gen"
	"github.com/streamforge/streamforge/internal/observability"
	"github.com/streamforge/streamforge/internal/seed"
	"github.com/streamforge/streamforge/internal/sink"
	"github.com/streamforge/streamforge/internal/spill"
	"github.com/streamforge/streamforge/internal/storage"
	"github.com/streamforge/streamforge/internal/stream"
	"github.com/streamforge/streamforge/pkg/types"
)

const (
	testUsers    = 20
	testProducts = 10
)

func newSQLiteSink(t *testing.T) sink.Sink {
	t.Helper()
	s, err := sink.NewSQLiteSink(config.SinkConfig{
		Driver:  "sqlite",
		Path:    filepath.Join(t.TempDir(), "stream.db"),
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("failed to create sqlite sink: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedSink(t *testing.T, s sink.Sink) {
	t.Helper()
	seeder := seed.NewSeeder(s, config.SeedConfig{Users: testUsers, Products: testProducts})
	if err := seeder.Run(context.Background()); err != nil {
		t.Fatalf("failed to seed dimensions: %v", err)
	}
}

func streamConfig(maxCycles int) config.StreamConfig {
	return config.StreamConfig{
		CycleInterval:       time.Millisecond,
		EventBatchSize:      5,
		OrderBatchSize:      2,
		WorkerCount:         2,
		StatsReportInterval: time.Hour,
		MaxCycles:           maxCycles,
	}
}

func runStreamer(t *testing.T, cfg config.StreamConfig, s sink.Sink, archiver *spill.Archiver, seed int64) {
	t.Helper()
	events := gen.NewEventGenerator(cfg.EventBatchSize, testUsers, rand.New(rand.NewSource(seed)))
	orders := gen.NewOrderGenerator(cfg.OrderBatchSize, testUsers, testProducts, rand.New(rand.NewSource(seed+1)))

	streamer := stream.NewStreamer(cfg, s, events, orders, observability.NewMetrics(), archiver)
	if err := streamer.Run(context.Background()); err != nil {
		t.Fatalf("streamer failed: %v", err)
	}
}

func scalar(t *testing.T, s sink.Sink, query string) string {
	t.Helper()
	v, err := s.Scalar(context.Background(), query)
	if err != nil {
		t.Fatalf("scalar query %q failed: %v", query, err)
	}
	return v
}

// TestStreamFlow runs the full pipeline against SQLite:
// seed → generate → insert → verify, then a second run to check that ids
// continue above what the first run left behind.
func TestStreamFlow(t *testing.T) {
	s := newSQLiteSink(t)
	seedSink(t, s)

	runStreamer(t, streamConfig(2), s, nil, 1)

	if got := scalar(t, s, "SELECT count(*) FROM events"); got != "10" {
		t.Errorf("event count = %s, want 10", got)
	}
	if got := scalar(t, s, "SELECT count(*) FROM orders"); got != "4" {
		t.Errorf("order count = %s, want 4", got)
	}

	// Cycle 0 writes events 1..5; cycle 1 re-reads max=5 and offsets by the
	// cycle index, writing 11..15.
	if got := scalar(t, s, "SELECT max(event_id) FROM events"); got != "15" {
		t.Errorf("max event id = %s, want 15", got)
	}
	if got := scalar(t, s, "SELECT max(order_id) FROM orders"); got != "6" {
		t.Errorf("max order id = %s, want 6", got)
	}

	// Every generated reference points at a seeded dimension row.
	if got := scalar(t, s,
		"SELECT count(*) FROM events WHERE user_id < 1 OR user_id > 20"); got != "0" {
		t.Errorf("%s events reference unknown users", got)
	}
	if got := scalar(t, s,
		"SELECT count(*) FROM orders WHERE product_id < 1 OR product_id > 10"); got != "0" {
		t.Errorf("%s orders reference unknown products", got)
	}

	// A restarted streamer picks up from the stored max: one more cycle
	// continues at 16..20.
	runStreamer(t, streamConfig(1), s, nil, 7)

	if got := scalar(t, s, "SELECT count(*) FROM events"); got != "15" {
		t.Errorf("event count after restart = %s, want 15", got)
	}
	if got := scalar(t, s, "SELECT max(event_id) FROM events"); got != "20" {
		t.Errorf("max event id after restart = %s, want 20", got)
	}
	if got := scalar(t, s, "SELECT max(order_id) FROM orders"); got != "8" {
		t.Errorf("max order id after restart = %s, want 8", got)
	}
}

// TestStreamSpillsWhenSinkRefuses runs the pipeline against a sink that
// refuses every statement and verifies each refused batch lands in the
// spill store while the loop keeps going.
func TestStreamSpillsWhenSinkRefuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Code: 241. DB::Exception: Memory limit exceeded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := sink.NewHTTPSink(config.SinkConfig{
		Driver:   "http",
		Endpoint: srv.URL,
		Database: "ecommerce",
		Username: "default",
		Timeout:  5 * time.Second,
	})
	defer s.Close()

	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create spill storage: %v", err)
	}

	runStreamer(t, streamConfig(3), s, spill.NewArchiver(store), 1)

	ctx := context.Background()
	eventKeys, err := store.List(ctx, "spill/events/")
	if err != nil {
		t.Fatalf("failed to list spilled events: %v", err)
	}
	if len(eventKeys) != 3 {
		t.Fatalf("got %d spilled event batches, want 3", len(eventKeys))
	}
	orderKeys, err := store.List(ctx, "spill/orders/")
	if err != nil {
		t.Fatalf("failed to list spilled orders: %v", err)
	}
	if len(orderKeys) != 3 {
		t.Fatalf("got %d spilled order batches, want 3", len(orderKeys))
	}

	// Spilled archives decompress back to one JSON document per record.
	raw, err := store.Get(ctx, eventKeys[0])
	if err != nil {
		t.Fatalf("failed to read spilled batch: %v", err)
	}
	decoded, err := snappy.Decode(nil, raw)
	if err != nil {
		t.Fatalf("failed to decompress spilled batch: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(decoded)), "\n")
	if len(lines) != 5 {
		t.Fatalf("spilled batch has %d records, want 5", len(lines))
	}
	var ev types.Event
	if err := json.Unmarshal([]byte(lines[0]), &ev); err != nil {
		t.Fatalf("spilled record is not valid JSON: %v", err)
	}
	if ev.EventID == 0 || ev.EventType == "" {
		t.Errorf("spilled record lost its fields: %+v", ev)
	}
}
