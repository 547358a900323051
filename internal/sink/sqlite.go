package sink

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/streamforge/streamforge/internal/config"
	"github.com/streamforge/streamforge/internal/errors"
	"github.com/streamforge/streamforge/pkg/types"
)

// SQLiteSink writes to a local database file. Useful for development and
// integration tests where no columnar store is running.
type SQLiteSink struct {
	db      *sql.DB
	timeout time.Duration
}

// NewSQLiteSink opens (or creates) the database file.
func NewSQLiteSink(cfg config.SinkConfig) (*SQLiteSink, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", cfg.Path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.NewSinkError(errors.CodeTransportFailure, "failed to open sqlite database", err)
	}

	// Single writer. The worker pool runs event and order inserts
	// concurrently, and sqlite serializes them on one connection.
	db.SetMaxOpenConns(1)

	return &SQLiteSink{db: db, timeout: cfg.Timeout}, nil
}

func (s *SQLiteSink) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *SQLiteSink) insertRows(ctx context.Context, table string, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewSinkError(errors.CodeTransportFailure, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(columns)), ",")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), placeholders,
	))
	if err != nil {
		return errors.NewSinkError(errors.CodeStatementRejected, "failed to prepare insert", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return errors.NewSinkError(errors.CodeStatementRejected, "failed to insert row", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewSinkError(errors.CodeTransportFailure, "failed to commit batch", err)
	}
	return nil
}

// InsertEvents writes the batch in a single transaction.
func (s *SQLiteSink) InsertEvents(ctx context.Context, events []types.Event) error {
	rows := make([][]any, len(events))
	for i, ev := range events {
		rows[i] = []any{
			int64(ev.EventID),
			int64(ev.UserID),
			ev.EventType,
			ev.EventTimestamp.UTC().Format(timestampLayout),
			ev.PageURL,
			ev.SessionID,
			ev.DeviceType,
			ev.Browser,
			ev.Country,
			int64(ev.DurationSeconds),
			ev.Revenue,
		}
	}
	return s.insertRows(ctx, "events", eventColumns, rows)
}

// InsertOrders writes the batch in a single transaction.
func (s *SQLiteSink) InsertOrders(ctx context.Context, orders []types.Order) error {
	rows := make([][]any, len(orders))
	for i, o := range orders {
		rows[i] = []any{
			int64(o.OrderID),
			int64(o.UserID),
			int64(o.ProductID),
			int64(o.Quantity),
			o.OrderDate.UTC().Format(dateLayout),
			o.OrderTimestamp.UTC().Format(timestampLayout),
			o.TotalAmount,
			o.Status,
			o.PaymentMethod,
		}
	}
	return s.insertRows(ctx, "orders", orderColumns, rows)
}

// InsertUsers writes dimension rows in a single transaction.
func (s *SQLiteSink) InsertUsers(ctx context.Context, users []types.User) error {
	rows := make([][]any, len(users))
	for i, u := range users {
		rows[i] = []any{
			int64(u.UserID),
			u.Name,
			u.Email,
			u.Country,
			u.SignupDate.UTC().Format(dateLayout),
		}
	}
	return s.insertRows(ctx, "users", userColumns, rows)
}

// InsertProducts writes dimension rows in a single transaction.
func (s *SQLiteSink) InsertProducts(ctx context.Context, products []types.Product) error {
	rows := make([][]any, len(products))
	for i, p := range products {
		rows[i] = []any{
			int64(p.ProductID),
			p.Name,
			p.Category,
			p.Price,
		}
	}
	return s.insertRows(ctx, "products", productColumns, rows)
}

// Scalar runs a single-value query. A NULL result (max over an empty table)
// comes back as the empty string so callers degrade it to zero.
func (s *SQLiteSink) Scalar(ctx context.Context, query string) (string, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	var v sql.NullString
	if err := s.db.QueryRowContext(ctx, query).Scan(&v); err != nil {
		return "", errors.NewSinkError(errors.CodeStatementRejected, "scalar query failed", err)
	}
	if !v.Valid {
		return "", nil
	}
	return v.String, nil
}

// Exec runs a statement with no result.
func (s *SQLiteSink) Exec(ctx context.Context, statement string) error {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, statement); err != nil {
		return errors.NewSinkError(errors.CodeStatementRejected, "statement failed", err)
	}
	return nil
}

// EnsureSchema creates the tables if they do not exist.
func (s *SQLiteSink) EnsureSchema(ctx context.Context) error {
	for _, ddl := range sqliteDDL {
		if err := s.Exec(ctx, ddl); err != nil {
			return err
		}
	}
	return nil
}

// Ping verifies the database file is reachable.
func (s *SQLiteSink) Ping(ctx context.Context) error {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		return errors.NewSinkError(errors.CodeTransportFailure, "ping failed", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
