// Package observability exposes the pipeline's runtime counters over
// Prometheus. The metrics mirror what the periodic stats report prints, so
// a scrape and the log tell the same story.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// CyclesTotal counts completed generation cycles.
	CyclesTotal prometheus.Counter

	// EventsInserted counts event records acknowledged by the sink.
	EventsInserted prometheus.Counter

	// OrdersInserted counts order records acknowledged by the sink.
	OrdersInserted prometheus.Counter

	// InsertFailures counts refused batches by table.
	InsertFailures *prometheus.CounterVec

	// BatchesSpilled counts refused batches archived to spill storage, by table.
	BatchesSpilled *prometheus.CounterVec

	// CycleDuration observes wall time per cycle, pacing sleep excluded.
	CycleDuration prometheus.Histogram

	// InsertDuration observes sink write latency by table.
	InsertDuration *prometheus.HistogramVec

	// SinkRows tracks the sink's live row totals by table, refreshed with
	// each stats report.
	SinkRows *prometheus.GaugeVec
}

// NewMetrics creates the collectors on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		CyclesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "streamforge_cycles_total",
			Help: "Completed generation cycles.",
		}),
		EventsInserted: factory.NewCounter(prometheus.CounterOpts{
			Name: "streamforge_events_inserted_total",
			Help: "Event records acknowledged by the sink.",
		}),
		OrdersInserted: factory.NewCounter(prometheus.CounterOpts{
			Name: "streamforge_orders_inserted_total",
			Help: "Order records acknowledged by the sink.",
		}),
		InsertFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "streamforge_insert_failures_total",
			Help: "Batches the sink refused.",
		}, []string{"table"}),
		BatchesSpilled: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "streamforge_batches_spilled_total",
			Help: "Refused batches archived to spill storage.",
		}, []string{"table"}),
		CycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "streamforge_cycle_duration_seconds",
			Help:    "Wall time per cycle, excluding the pacing sleep.",
			Buckets: prometheus.DefBuckets,
		}),
		InsertDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "streamforge_insert_duration_seconds",
			Help:    "Sink write latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"table"}),
		SinkRows: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "streamforge_sink_rows",
			Help: "Row totals reported by the sink.",
		}, []string{"table"}),
	}
}

// Registry returns the private registry for serving and tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
