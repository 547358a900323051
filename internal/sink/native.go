package sink

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/streamforge/streamforge/internal/config"
	"github.com/streamforge/streamforge/internal/errors"
	"github.com/streamforge/streamforge/pkg/types"
)

// NativeSink speaks the store's columnar wire protocol. Batches go through
// the driver's prepared-batch path, so values are bound, not interpolated.
type NativeSink struct {
	conn    driver.Conn
	timeout time.Duration
}

// NewNativeSink opens a native-protocol connection and verifies it.
func NewNativeSink(ctx context.Context, cfg config.SinkConfig) (*NativeSink, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, errors.NewSinkError(errors.CodeTransportFailure, "failed to open native connection", err)
	}

	s := &NativeSink{conn: conn, timeout: cfg.Timeout}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := conn.Ping(pingCtx); err != nil {
		conn.Close()
		return nil, errors.NewSinkError(errors.CodeTransportFailure, "native connection ping failed", err)
	}

	return s, nil
}

func (s *NativeSink) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// InsertEvents writes the batch through a prepared batch.
func (s *NativeSink) InsertEvents(ctx context.Context, events []types.Event) error {
	if len(events) == 0 {
		return nil
	}
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO events ("+strings.Join(eventColumns, ", ")+")")
	if err != nil {
		return errors.NewSinkError(errors.CodeTransportFailure, "failed to prepare events batch", err)
	}
	for _, ev := range events {
		if err := batch.Append(
			ev.EventID,
			ev.UserID,
			ev.EventType,
			ev.EventTimestamp,
			ev.PageURL,
			ev.SessionID,
			ev.DeviceType,
			ev.Browser,
			ev.Country,
			ev.DurationSeconds,
			ev.Revenue,
		); err != nil {
			return errors.NewSinkError(errors.CodeStatementRejected, "failed to append event row", err)
		}
	}
	if err := batch.Send(); err != nil {
		return errors.NewSinkError(errors.CodeTransportFailure, "failed to send events batch", err)
	}
	return nil
}

// InsertOrders writes the batch through a prepared batch.
func (s *NativeSink) InsertOrders(ctx context.Context, orders []types.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO orders ("+strings.Join(orderColumns, ", ")+")")
	if err != nil {
		return errors.NewSinkError(errors.CodeTransportFailure, "failed to prepare orders batch", err)
	}
	for _, o := range orders {
		if err := batch.Append(
			o.OrderID,
			o.UserID,
			o.ProductID,
			o.Quantity,
			o.OrderDate,
			o.OrderTimestamp,
			o.TotalAmount,
			o.Status,
			o.PaymentMethod,
		); err != nil {
			return errors.NewSinkError(errors.CodeStatementRejected, "failed to append order row", err)
		}
	}
	if err := batch.Send(); err != nil {
		return errors.NewSinkError(errors.CodeTransportFailure, "failed to send orders batch", err)
	}
	return nil
}

// InsertUsers writes dimension rows through a prepared batch.
func (s *NativeSink) InsertUsers(ctx context.Context, users []types.User) error {
	if len(users) == 0 {
		return nil
	}
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO users ("+strings.Join(userColumns, ", ")+")")
	if err != nil {
		return errors.NewSinkError(errors.CodeTransportFailure, "failed to prepare users batch", err)
	}
	for _, u := range users {
		if err := batch.Append(u.UserID, u.Name, u.Email, u.Country, u.SignupDate); err != nil {
			return errors.NewSinkError(errors.CodeStatementRejected, "failed to append user row", err)
		}
	}
	if err := batch.Send(); err != nil {
		return errors.NewSinkError(errors.CodeTransportFailure, "failed to send users batch", err)
	}
	return nil
}

// InsertProducts writes dimension rows through a prepared batch.
func (s *NativeSink) InsertProducts(ctx context.Context, products []types.Product) error {
	if len(products) == 0 {
		return nil
	}
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO products ("+strings.Join(productColumns, ", ")+")")
	if err != nil {
		return errors.NewSinkError(errors.CodeTransportFailure, "failed to prepare products batch", err)
	}
	for _, p := range products {
		if err := batch.Append(p.ProductID, p.Name, p.Category, p.Price); err != nil {
			return errors.NewSinkError(errors.CodeStatementRejected, "failed to append product row", err)
		}
	}
	if err := batch.Send(); err != nil {
		return errors.NewSinkError(errors.CodeTransportFailure, "failed to send products batch", err)
	}
	return nil
}

// Scalar runs a numeric single-value query and renders the result as text,
// keeping the textual scalar contract uniform across drivers.
func (s *NativeSink) Scalar(ctx context.Context, query string) (string, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	var v uint64
	if err := s.conn.QueryRow(ctx, query).Scan(&v); err != nil {
		return "", errors.NewSinkError(errors.CodeMalformedScalar, "failed to scan scalar", err)
	}
	return strconv.FormatUint(v, 10), nil
}

// Exec runs a statement with no result.
func (s *NativeSink) Exec(ctx context.Context, statement string) error {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	if err := s.conn.Exec(ctx, statement); err != nil {
		return errors.NewSinkError(errors.CodeStatementRejected, "statement failed", err)
	}
	return nil
}

// EnsureSchema creates the tables if they do not exist.
func (s *NativeSink) EnsureSchema(ctx context.Context) error {
	for _, ddl := range columnarDDL {
		if err := s.Exec(ctx, ddl); err != nil {
			return err
		}
	}
	return nil
}

// Ping verifies the connection.
func (s *NativeSink) Ping(ctx context.Context) error {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	if err := s.conn.Ping(ctx); err != nil {
		return errors.NewSinkError(errors.CodeTransportFailure, "ping failed", err)
	}
	return nil
}

// Close closes the connection.
func (s *NativeSink) Close() error {
	return s.conn.Close()
}
