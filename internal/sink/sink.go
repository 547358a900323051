// Package sink provides the destination-store drivers for the pipeline.
// The store is opaque to the rest of the system: it accepts bulk writes and
// answers scalar queries, nothing more. Three drivers share one contract:
// http (the store's text-statement HTTP interface), native (the columnar
// wire protocol), and sqlite (local development and tests).
package sink

import (
	"context"
	"fmt"

	"github.com/streamforge/streamforge/internal/config"
	"github.com/streamforge/streamforge/internal/errors"
	"github.com/streamforge/streamforge/pkg/types"
)

// Sink is the destination store seen from the pipeline. Insert methods treat
// an empty batch as a successful no-op, never retry, and bound every call
// with the configured per-call timeout.
type Sink interface {
	// InsertEvents bulk-writes one cycle's event batch.
	InsertEvents(ctx context.Context, events []types.Event) error

	// InsertOrders bulk-writes one cycle's order batch.
	InsertOrders(ctx context.Context, orders []types.Order) error

	// InsertUsers bulk-writes users dimension rows (seeding).
	InsertUsers(ctx context.Context, users []types.User) error

	// InsertProducts bulk-writes products dimension rows (seeding).
	InsertProducts(ctx context.Context, products []types.Product) error

	// Scalar runs a single-value numeric query (max, count) and returns the
	// raw scalar text. Callers own the parse-or-degrade decision.
	Scalar(ctx context.Context, query string) (string, error)

	// Exec runs a statement expecting no result (DDL, maintenance).
	Exec(ctx context.Context, statement string) error

	// EnsureSchema creates the events, orders, users, and products tables
	// if they do not exist.
	EnsureSchema(ctx context.Context) error

	// Ping verifies the sink is reachable.
	Ping(ctx context.Context) error

	// Close releases the driver's resources.
	Close() error
}

// Open creates the sink selected by the configuration.
func Open(ctx context.Context, cfg config.SinkConfig) (Sink, error) {
	switch cfg.Driver {
	case "http":
		return NewHTTPSink(cfg), nil
	case "native":
		return NewNativeSink(ctx, cfg)
	case "sqlite":
		return NewSQLiteSink(cfg)
	default:
		return nil, errors.NewConfigError(errors.CodeInvalidConfig,
			fmt.Sprintf("unknown sink driver: %s", cfg.Driver))
	}
}

// Column orders shared by all drivers. Generated values are flattened in
// exactly this order.
var (
	eventColumns = []string{"event_id", "user_id", "event_type", "event_timestamp", "page_url",
		"session_id", "device_type", "browser", "country", "duration_seconds", "revenue"}

	orderColumns = []string{"order_id", "user_id", "product_id", "quantity", "order_date",
		"order_timestamp", "total_amount", "status", "payment_method"}

	userColumns = []string{"user_id", "name", "email", "country", "signup_date"}

	productColumns = []string{"product_id", "name", "category", "price"}
)

func eventRow(ev types.Event) []any {
	return []any{ev.EventID, ev.UserID, ev.EventType, ev.EventTimestamp, ev.PageURL,
		ev.SessionID, ev.DeviceType, ev.Browser, ev.Country, ev.DurationSeconds, ev.Revenue}
}

func orderRow(o types.Order) []any {
	return []any{o.OrderID, o.UserID, o.ProductID, o.Quantity, dateOnly(o.OrderDate),
		o.OrderTimestamp, o.TotalAmount, o.Status, o.PaymentMethod}
}

func userRow(u types.User) []any {
	return []any{u.UserID, u.Name, u.Email, u.Country, dateOnly(u.SignupDate)}
}

func productRow(p types.Product) []any {
	return []any{p.ProductID, p.Name, p.Category, p.Price}
}
