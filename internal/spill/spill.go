// Package spill archives batches that the sink refused, so a failed cycle
// loses no data permanently. Archives are JSON lines, snappy-compressed,
// keyed by kind, wall-clock time, and a fresh UUID. Archiving is best
// effort: a spill failure is logged by the caller and the run continues.
package spill

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang/snappy"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/streamforge/streamforge/internal/errors"
	"github.com/streamforge/streamforge/internal/storage"
	"github.com/streamforge/streamforge/pkg/types"
)

const keyTimeLayout = "20060102-150405"

// Archiver writes refused batches to object storage.
type Archiver struct {
	store storage.ObjectStorage
	now   func() time.Time
}

// NewArchiver creates an archiver on top of the given store.
func NewArchiver(store storage.ObjectStorage) *Archiver {
	return &Archiver{
		store: store,
		now:   time.Now,
	}
}

// ArchiveEvents archives one refused event batch and returns its key.
func (a *Archiver) ArchiveEvents(ctx context.Context, events []types.Event) (string, error) {
	if len(events) == 0 {
		return "", nil
	}
	lines := make([][]byte, len(events))
	for i := range events {
		line, err := json.Marshal(&events[i])
		if err != nil {
			return "", errors.NewSpillError("failed to marshal event", err)
		}
		lines[i] = line
	}
	return a.archive(ctx, "events", lines)
}

// ArchiveOrders archives one refused order batch and returns its key.
func (a *Archiver) ArchiveOrders(ctx context.Context, orders []types.Order) (string, error) {
	if len(orders) == 0 {
		return "", nil
	}
	lines := make([][]byte, len(orders))
	for i := range orders {
		line, err := json.Marshal(&orders[i])
		if err != nil {
			return "", errors.NewSpillError("failed to marshal order", err)
		}
		lines[i] = line
	}
	return a.archive(ctx, "orders", lines)
}

func (a *Archiver) archive(ctx context.Context, kind string, lines [][]byte) (string, error) {
	var buf bytes.Buffer
	for _, line := range lines {
		buf.Write(line)
		buf.WriteByte('\n')
	}

	key := fmt.Sprintf("spill/%s/%s-%s.jsonl.snappy",
		kind, a.now().UTC().Format(keyTimeLayout), uuid.NewString())

	compressed := snappy.Encode(nil, buf.Bytes())
	if err := a.store.Put(ctx, key, compressed); err != nil {
		return "", errors.NewSpillError(fmt.Sprintf("failed to store %s archive", kind), err)
	}

	log.WithFields(log.Fields{
		"kind":    kind,
		"key":     key,
		"records": len(lines),
		"bytes":   len(compressed),
	}).Debug("archived refused batch")

	return key, nil
}
