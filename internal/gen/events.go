// Package gen produces the synthetic event and order batches streamed into
// the sink. Generators are pure functions of (cycle index, current max id)
// and their injected random stream, which keeps every distribution testable.
package gen

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/streamforge/streamforge/pkg/types"
)

// Event types whose revenue handling differs from the rest.
const (
	EventTypePageView  = "page_view"
	EventTypePurchase  = "purchase"
	EventTypeAddToCart = "add_to_cart"
)

// Closed vocabularies for event fields. The weighted table is data, not
// branching logic; its weights follow observed traffic shape and are not
// required to sum to 1.
var (
	eventTypes = mustTable(
		[]string{EventTypePageView, "click", "search", EventTypeAddToCart, EventTypePurchase,
			"remove_from_cart", "login", "logout", "signup", "share"},
		[]float64{0.40, 0.20, 0.15, 0.08, 0.10, 0.02, 0.02, 0.01, 0.01, 0.01},
	)

	deviceTypes = []string{"desktop", "mobile", "tablet"}
	browsers    = []string{"Chrome", "Firefox", "Safari", "Edge", "Opera"}
	countries   = []string{"US", "UK", "DE", "FR", "CA", "AU", "JP", "BR", "IN", "RU"}
	pages       = []string{"/home", "/products", "/cart", "/checkout", "/profile", "/search",
		"/category/electronics", "/category/books", "/deals", "/about"}
)

// sessionBucketSeconds is the width of the session id time bucket.
const sessionBucketSeconds = 300

// EventGenerator produces one batch of synthetic events per cycle.
// It is driven by a single goroutine and is not safe for concurrent use.
type EventGenerator struct {
	batchSize int
	userCount uint64
	rng       *rand.Rand
	now       func() time.Time
}

// NewEventGenerator creates an event generator over a user population of the
// given size. The random source is injected so tests can seed it.
func NewEventGenerator(batchSize, userCount int, rng *rand.Rand) *EventGenerator {
	return &EventGenerator{
		batchSize: batchSize,
		userCount: uint64(userCount),
		rng:       rng,
		now:       time.Now,
	}
}

// Batch generates one cycle's worth of events. Identifiers extend the id
// space as maxEventID + cycleIndex*batchSize + offset + 1, so a batch that
// failed to land never gets its ids reissued within a run.
func (g *EventGenerator) Batch(cycleIndex int, maxEventID uint64) []types.Event {
	now := g.now().UTC()
	sessionBucket := now.Unix() / sessionBucketSeconds
	base := maxEventID + uint64(cycleIndex)*uint64(g.batchSize)

	events := make([]types.Event, 0, g.batchSize)
	for i := 0; i < g.batchSize; i++ {
		userID := uint64(g.rng.Int63n(int64(g.userCount))) + 1
		eventType := eventTypes.Pick(g.rng)

		var revenue float64
		switch eventType {
		case EventTypePurchase:
			revenue = round2(20 + g.rng.Float64()*480)
		case EventTypeAddToCart:
			// Half of cart adds carry the potential cart value.
			if g.rng.Float64() < 0.5 {
				revenue = round2(10 + g.rng.Float64()*190)
			}
		}

		pageURL := "/action/" + eventType
		if eventType == EventTypePageView {
			pageURL = pages[g.rng.Intn(len(pages))]
		}

		events = append(events, types.Event{
			EventID:         base + uint64(i) + 1,
			UserID:          userID,
			EventType:       eventType,
			EventTimestamp:  jitter(now, g.rng),
			PageURL:         pageURL,
			SessionID:       fmt.Sprintf("sess-%d-%d", userID, sessionBucket),
			DeviceType:      deviceTypes[g.rng.Intn(len(deviceTypes))],
			Browser:         browsers[g.rng.Intn(len(browsers))],
			Country:         countries[g.rng.Intn(len(countries))],
			DurationSeconds: uint32(g.rng.Intn(300)) + 1,
			Revenue:         revenue,
		})
	}

	return events
}

// jitter pulls a timestamp back a uniform 0..1000ms so every record lands
// within the second before generation, never in the future.
func jitter(now time.Time, rng *rand.Rand) time.Time {
	return now.Add(-time.Duration(rng.Intn(1001)) * time.Millisecond)
}

// round2 rounds a monetary value to cents.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
