package stream

import "time"

// Stats accumulates run counters. It belongs to the cycle loop goroutine
// and is not safe for concurrent use; the Prometheus collectors carry the
// concurrent view of the same numbers.
type Stats struct {
	start      time.Time
	lastReport time.Time

	cycles         uint64
	eventsInserted uint64
	ordersInserted uint64
	eventFailures  uint64
	orderFailures  uint64
}

// NewStats creates a collector with both clocks set to now.
func NewStats(now time.Time) *Stats {
	return &Stats{start: now, lastReport: now}
}

// RecordCycle counts one completed cycle, failed inserts included.
func (s *Stats) RecordCycle() { s.cycles++ }

// RecordEvents counts acknowledged event records.
func (s *Stats) RecordEvents(n int) { s.eventsInserted += uint64(n) }

// RecordOrders counts acknowledged order records.
func (s *Stats) RecordOrders(n int) { s.ordersInserted += uint64(n) }

// RecordEventFailure counts one refused event batch.
func (s *Stats) RecordEventFailure() { s.eventFailures++ }

// RecordOrderFailure counts one refused order batch.
func (s *Stats) RecordOrderFailure() { s.orderFailures++ }

// Cycles returns completed cycles.
func (s *Stats) Cycles() uint64 { return s.cycles }

// EventsInserted returns acknowledged event records.
func (s *Stats) EventsInserted() uint64 { return s.eventsInserted }

// OrdersInserted returns acknowledged order records.
func (s *Stats) OrdersInserted() uint64 { return s.ordersInserted }

// EventFailures returns refused event batches.
func (s *Stats) EventFailures() uint64 { return s.eventFailures }

// OrderFailures returns refused order batches.
func (s *Stats) OrderFailures() uint64 { return s.orderFailures }

// Elapsed returns wall time since the run started.
func (s *Stats) Elapsed(now time.Time) time.Duration {
	return now.Sub(s.start)
}

// EventRate returns acknowledged events per second since the run started.
func (s *Stats) EventRate(now time.Time) float64 {
	return rate(s.eventsInserted, s.Elapsed(now))
}

// OrderRate returns acknowledged orders per second since the run started.
func (s *Stats) OrderRate(now time.Time) float64 {
	return rate(s.ordersInserted, s.Elapsed(now))
}

// ShouldReport reports whether the periodic stats block is due.
func (s *Stats) ShouldReport(now time.Time, interval time.Duration) bool {
	return now.Sub(s.lastReport) > interval
}

// MarkReported resets the periodic report clock.
func (s *Stats) MarkReported(now time.Time) {
	s.lastReport = now
}

func rate(n uint64, elapsed time.Duration) float64 {
	secs := elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(n) / secs
}
