package gen

import (
	"math/rand"
	"time"

	"github.com/streamforge/streamforge/pkg/types"
)

// Order field vocabularies. Quantity skews heavily toward single-unit orders
// and most orders complete successfully.
var (
	quantities = mustTable(
		[]uint8{1, 2, 3, 4, 5},
		[]float64{0.50, 0.25, 0.15, 0.07, 0.03},
	)

	orderStatuses = mustTable(
		[]string{"completed", "pending", "cancelled", "refunded"},
		[]float64{0.75, 0.15, 0.07, 0.03},
	)

	paymentMethods = []string{"credit_card", "paypal", "bank_transfer", "apple_pay", "google_pay"}
)

// OrderGenerator produces one batch of synthetic orders per cycle.
// It is driven by a single goroutine and is not safe for concurrent use.
type OrderGenerator struct {
	batchSize    int
	userCount    uint64
	productCount uint64
	rng          *rand.Rand
	now          func() time.Time
}

// NewOrderGenerator creates an order generator over the given user and
// product populations. The random source is injected so tests can seed it.
func NewOrderGenerator(batchSize, userCount, productCount int, rng *rand.Rand) *OrderGenerator {
	return &OrderGenerator{
		batchSize:    batchSize,
		userCount:    uint64(userCount),
		productCount: uint64(productCount),
		rng:          rng,
		now:          time.Now,
	}
}

// Batch generates one cycle's worth of orders. Identifier assignment follows
// the same arithmetic as event batches.
func (g *OrderGenerator) Batch(cycleIndex int, maxOrderID uint64) []types.Order {
	now := g.now().UTC()
	base := maxOrderID + uint64(cycleIndex)*uint64(g.batchSize)

	orders := make([]types.Order, 0, g.batchSize)
	for i := 0; i < g.batchSize; i++ {
		ts := jitter(now, g.rng)
		year, month, day := ts.Date()

		// Most orders fall in [50,200); one in ten is high-value.
		var amount float64
		if g.rng.Float64() < 0.9 {
			amount = round2(50 + g.rng.Float64()*150)
		} else {
			amount = round2(200 + g.rng.Float64()*800)
		}

		orders = append(orders, types.Order{
			OrderID:        base + uint64(i) + 1,
			UserID:         uint64(g.rng.Int63n(int64(g.userCount))) + 1,
			ProductID:      uint64(g.rng.Int63n(int64(g.productCount))) + 1,
			Quantity:       quantities.Pick(g.rng),
			OrderDate:      time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
			OrderTimestamp: ts,
			TotalAmount:    amount,
			Status:         orderStatuses.Pick(g.rng),
			PaymentMethod:  paymentMethods[g.rng.Intn(len(paymentMethods))],
		})
	}

	return orders
}
