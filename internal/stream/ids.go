package stream

import (
	"context"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/streamforge/streamforge/internal/sink"
)

// Allocator derives the id base for each cycle from the sink's current
// contents. Querying fresh every cycle means ids lost to a refused batch
// are never reissued: the id space keeps a gap and moves on.
type Allocator struct {
	sink sink.Sink
}

// NewAllocator creates an allocator over the given sink.
func NewAllocator(s sink.Sink) *Allocator {
	return &Allocator{sink: s}
}

// MaxEventID returns the largest stored event id, or zero when the table is
// empty, the query fails, or the scalar does not parse. Degrading to zero
// keeps the loop alive; the next cycle asks again.
func (a *Allocator) MaxEventID(ctx context.Context) uint64 {
	return a.maxID(ctx, "events", "event_id")
}

// MaxOrderID returns the largest stored order id, degraded the same way.
func (a *Allocator) MaxOrderID(ctx context.Context) uint64 {
	return a.maxID(ctx, "orders", "order_id")
}

func (a *Allocator) maxID(ctx context.Context, table, column string) uint64 {
	v, err := a.sink.Scalar(ctx, fmt.Sprintf("SELECT max(%s) FROM %s", column, table))
	if err != nil {
		log.Warnf("max %s query failed, using 0: %v", column, err)
		return 0
	}
	if v == "" {
		return 0
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		log.Warnf("malformed max %s scalar %q, using 0", column, v)
		return 0
	}
	return n
}

// Count returns the number of rows in a table, or zero when the query
// fails or the scalar does not parse.
func (a *Allocator) Count(ctx context.Context, table string) uint64 {
	v, err := a.sink.Scalar(ctx, fmt.Sprintf("SELECT count(*) FROM %s", table))
	if err != nil {
		log.Warnf("count %s query failed, using 0: %v", table, err)
		return 0
	}
	if v == "" {
		return 0
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		log.Warnf("malformed count scalar %q for %s, using 0", v, table)
		return 0
	}
	return n
}
