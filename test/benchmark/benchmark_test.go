// Package benchmark provides performance benchmarks for Streamforge.
package benchmark

import (
	"context"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/streamforge/streamforge/internal/config"
	"github.com/streamforge/streamforge/internal/gen"
	"github.com/streamforge/streamforge/internal/sink"
	"github.com/streamforge/streamforge/internal/spill"
	"github.com/streamforge/streamforge/internal/storage"
)

// BenchmarkEventGeneration measures event batch generation throughput.
// Generation must stay far below the cycle interval so pacing, not CPU,
// bounds the stream rate.
func BenchmarkEventGeneration(b *testing.B) {
	g := gen.NewEventGenerator(1000, 100_000, rand.New(rand.NewSource(1)))

	b.ResetTimer()
	b.ReportAllocs()

	total := 0
	for i := 0; i < b.N; i++ {
		batch := g.Batch(i, 0)
		total += len(batch)
	}

	b.ReportMetric(float64(total)/b.Elapsed().Seconds(), "events/sec")
}

// BenchmarkOrderGeneration measures order batch generation throughput.
func BenchmarkOrderGeneration(b *testing.B) {
	g := gen.NewOrderGenerator(1000, 100_000, 10_000, rand.New(rand.NewSource(1)))

	b.ResetTimer()
	b.ReportAllocs()

	total := 0
	for i := 0; i < b.N; i++ {
		batch := g.Batch(i, 0)
		total += len(batch)
	}

	b.ReportMetric(float64(total)/b.Elapsed().Seconds(), "orders/sec")
}

// BenchmarkHTTPInsert measures the full HTTP insert path: statement
// serialization plus the request round trip against a local server.
func BenchmarkHTTPInsert(b *testing.B) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := sink.NewHTTPSink(config.SinkConfig{
		Driver:   "http",
		Endpoint: srv.URL,
		Database: "ecommerce",
		Username: "default",
		Timeout:  30 * time.Second,
	})
	defer s.Close()

	g := gen.NewEventGenerator(1000, 100_000, rand.New(rand.NewSource(1)))
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	total := 0
	for i := 0; i < b.N; i++ {
		batch := g.Batch(i, 0)
		if err := s.InsertEvents(ctx, batch); err != nil {
			b.Fatal(err)
		}
		total += len(batch)
	}

	b.ReportMetric(float64(total)/b.Elapsed().Seconds(), "rows/sec")
}

// BenchmarkSQLiteInsert measures bulk insert throughput against a real
// SQLite file, the sink used by local development.
func BenchmarkSQLiteInsert(b *testing.B) {
	s, err := sink.NewSQLiteSink(config.SinkConfig{
		Driver:  "sqlite",
		Path:    filepath.Join(b.TempDir(), "bench.db"),
		Timeout: 30 * time.Second,
	})
	if err != nil {
		b.Fatal(err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.EnsureSchema(ctx); err != nil {
		b.Fatal(err)
	}

	g := gen.NewEventGenerator(100, 100_000, rand.New(rand.NewSource(1)))

	b.ResetTimer()
	b.ReportAllocs()

	total := 0
	for i := 0; i < b.N; i++ {
		batch := g.Batch(i, 0)
		if err := s.InsertEvents(ctx, batch); err != nil {
			b.Fatal(err)
		}
		total += len(batch)
	}

	b.ReportMetric(float64(total)/b.Elapsed().Seconds(), "rows/sec")
}

// BenchmarkSpillArchive measures the spill path: JSONL encode, snappy
// compress, and local object store write for one refused batch.
func BenchmarkSpillArchive(b *testing.B) {
	store, err := storage.NewLocalStorage(b.TempDir())
	if err != nil {
		b.Fatal(err)
	}
	archiver := spill.NewArchiver(store)

	g := gen.NewEventGenerator(1000, 100_000, rand.New(rand.NewSource(1)))
	batch := g.Batch(0, 0)
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := archiver.ArchiveEvents(ctx, batch); err != nil {
			b.Fatal(err)
		}
	}

	b.ReportMetric(float64(len(batch)*b.N)/b.Elapsed().Seconds(), "events/sec")
}
