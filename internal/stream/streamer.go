// Package stream drives the generation cycle: allocate ids against the
// sink's current contents, generate one event batch and one order batch,
// insert both in parallel through a bounded worker pool, then pace the next
// cycle so batches land once per interval regardless of how long the work
// took. Refused batches are logged, optionally spilled, and never retried.
package stream

import (
	"context"
	"fmt"
	"math"
	"time"

	log "github.com/sirupsen/logrus"
	"k8s.io/utils/clock"

	"github.com/streamforge/streamforge/internal/config"
	"github.com/streamforge/streamforge/internal/errors"
	"github.com/streamforge/streamforge/internal/gen"
	"github.com/streamforge/streamforge/internal/observability"
	"github.com/streamforge/streamforge/internal/sink"
	"github.com/streamforge/streamforge/internal/spill"
	"github.com/streamforge/streamforge/pkg/types"
)

// Streamer owns the cycle loop. One Streamer runs one loop; Run must be
// called at most once.
type Streamer struct {
	cfg      config.StreamConfig
	sink     sink.Sink
	events   *gen.EventGenerator
	orders   *gen.OrderGenerator
	alloc    *Allocator
	pool     *Pool
	stats    *Stats
	metrics  *observability.Metrics
	archiver *spill.Archiver

	clock clock.Clock
}

// NewStreamer assembles a streamer. The archiver may be nil when spill is
// disabled.
func NewStreamer(
	cfg config.StreamConfig,
	s sink.Sink,
	events *gen.EventGenerator,
	orders *gen.OrderGenerator,
	metrics *observability.Metrics,
	archiver *spill.Archiver,
) *Streamer {
	return &Streamer{
		cfg:      cfg,
		sink:     s,
		events:   events,
		orders:   orders,
		alloc:    NewAllocator(s),
		pool:     NewPool(cfg.WorkerCount),
		metrics:  metrics,
		archiver: archiver,
		clock:    clock.RealClock{},
	}
}

// Run executes cycles until the context is canceled, the configured cycle
// limit is reached, or an unexpected fault surfaces. The final stats block
// is emitted exactly once on the way out, whatever the exit path.
func (s *Streamer) Run(ctx context.Context) error {
	s.stats = NewStats(s.clock.Now())

	defer s.report(context.Background())
	defer s.pool.Close()

	for cycle := 0; ; cycle++ {
		if s.cfg.MaxCycles > 0 && cycle >= s.cfg.MaxCycles {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		cycleStart := s.clock.Now()

		if err := s.runCycle(ctx, cycle); err != nil {
			log.Errorf("cycle %d failed: %v", cycle, err)
			return err
		}

		s.metrics.CycleDuration.Observe(s.clock.Since(cycleStart).Seconds())

		if s.stats.ShouldReport(s.clock.Now(), s.cfg.StatsReportInterval) {
			s.report(ctx)
			s.stats.MarkReported(s.clock.Now())
		}

		// Pace the next cycle. A cycle that overran its interval starts
		// the next one immediately.
		if sleep := s.cfg.CycleInterval - s.clock.Since(cycleStart); sleep > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-s.clock.After(sleep):
			}
		}
	}
}

// runCycle performs one allocate-generate-insert-join round. Refused
// batches keep the loop going; only unexpected faults propagate.
func (s *Streamer) runCycle(ctx context.Context, cycle int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.NewInternalError(fmt.Sprintf("cycle %d panicked: %v", cycle, r), nil)
		}
	}()

	maxEventID := s.alloc.MaxEventID(ctx)
	maxOrderID := s.alloc.MaxOrderID(ctx)

	events := s.events.Batch(cycle, maxEventID)
	orders := s.orders.Batch(cycle, maxOrderID)

	eventTask := s.pool.Submit(func() error { return s.insertEvents(ctx, events) })
	orderTask := s.pool.Submit(func() error { return s.insertOrders(ctx, orders) })

	eventErr := eventTask.Wait()
	orderErr := orderTask.Wait()

	for _, taskErr := range []error{eventErr, orderErr} {
		if errors.GetCategory(taskErr) == errors.ErrCategoryInternal {
			return taskErr
		}
	}

	if eventErr == nil {
		s.stats.RecordEvents(len(events))
		s.metrics.EventsInserted.Add(float64(len(events)))
	} else {
		s.stats.RecordEventFailure()
	}
	if orderErr == nil {
		s.stats.RecordOrders(len(orders))
		s.metrics.OrdersInserted.Add(float64(len(orders)))
	} else {
		s.stats.RecordOrderFailure()
	}

	s.stats.RecordCycle()
	s.metrics.CyclesTotal.Inc()

	if eventErr == nil && orderErr == nil {
		log.Infof("batch #%04d | %d events + %d orders inserted", cycle, len(events), len(orders))
	} else {
		log.Warnf("batch #%04d | events %s | orders %s", cycle, mark(eventErr), mark(orderErr))
	}

	return nil
}

// insertEvents runs on a pool worker. A refused batch is archived when
// spill is enabled; the insert error comes back either way.
func (s *Streamer) insertEvents(ctx context.Context, events []types.Event) error {
	start := s.clock.Now()
	err := s.sink.InsertEvents(ctx, events)
	s.metrics.InsertDuration.WithLabelValues("events").Observe(s.clock.Since(start).Seconds())
	if err != nil {
		s.metrics.InsertFailures.WithLabelValues("events").Inc()
		log.Warnf("events insert failed: %v", err)
		s.spillEvents(ctx, events)
	}
	return err
}

// insertOrders runs on a pool worker.
func (s *Streamer) insertOrders(ctx context.Context, orders []types.Order) error {
	start := s.clock.Now()
	err := s.sink.InsertOrders(ctx, orders)
	s.metrics.InsertDuration.WithLabelValues("orders").Observe(s.clock.Since(start).Seconds())
	if err != nil {
		s.metrics.InsertFailures.WithLabelValues("orders").Inc()
		log.Warnf("orders insert failed: %v", err)
		s.spillOrders(ctx, orders)
	}
	return err
}

func (s *Streamer) spillEvents(ctx context.Context, events []types.Event) {
	if s.archiver == nil {
		return
	}
	key, err := s.archiver.ArchiveEvents(ctx, events)
	if err != nil {
		log.Warnf("failed to spill events batch: %v", err)
		return
	}
	s.metrics.BatchesSpilled.WithLabelValues("events").Inc()
	log.Infof("spilled %d events to %s", len(events), key)
}

func (s *Streamer) spillOrders(ctx context.Context, orders []types.Order) {
	if s.archiver == nil {
		return
	}
	key, err := s.archiver.ArchiveOrders(ctx, orders)
	if err != nil {
		log.Warnf("failed to spill orders batch: %v", err)
		return
	}
	s.metrics.BatchesSpilled.WithLabelValues("orders").Inc()
	log.Infof("spilled %d orders to %s", len(orders), key)
}

// report emits the throughput stats block. The sink totals come from live
// count queries, so the block shows what actually landed.
func (s *Streamer) report(ctx context.Context) {
	now := s.clock.Now()
	sinkEvents := s.alloc.Count(ctx, "events")
	sinkOrders := s.alloc.Count(ctx, "orders")
	s.metrics.SinkRows.WithLabelValues("events").Set(float64(sinkEvents))
	s.metrics.SinkRows.WithLabelValues("orders").Set(float64(sinkOrders))

	log.WithFields(log.Fields{
		"elapsed":         s.stats.Elapsed(now).Round(time.Second).String(),
		"cycles":          s.stats.Cycles(),
		"events_inserted": s.stats.EventsInserted(),
		"orders_inserted": s.stats.OrdersInserted(),
		"event_failures":  s.stats.EventFailures(),
		"order_failures":  s.stats.OrderFailures(),
		"events_per_sec":  round1(s.stats.EventRate(now)),
		"orders_per_sec":  round1(s.stats.OrderRate(now)),
		"hourly_events":   uint64(s.stats.EventRate(now) * 3600),
		"hourly_orders":   uint64(s.stats.OrderRate(now) * 3600),
		"sink_events":     sinkEvents,
		"sink_orders":     sinkOrders,
	}).Info("throughput stats")
}

func mark(err error) string {
	if err == nil {
		return "ok"
	}
	return "failed"
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
