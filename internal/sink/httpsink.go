package sink

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/streamforge/streamforge/internal/config"
	"github.com/streamforge/streamforge/internal/errors"
	"github.com/streamforge/streamforge/pkg/types"
)

// HTTPSink talks to the store's HTTP interface: the statement text is the
// request body, the response body is either empty (success), a scalar, or an
// error description. Success for a write is a 2xx status with an empty body.
type HTTPSink struct {
	endpoint string
	database string
	username string
	password string
	timeout  time.Duration
	client   *http.Client
}

// NewHTTPSink creates an HTTP sink. The endpoint is the store's HTTP root,
// e.g. http://localhost:8123.
func NewHTTPSink(cfg config.SinkConfig) *HTTPSink {
	return &HTTPSink{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		database: cfg.Database,
		username: cfg.Username,
		password: cfg.Password,
		timeout:  cfg.Timeout,
		client:   &http.Client{},
	}
}

// post submits one statement and returns the trimmed response body.
func (s *HTTPSink) post(ctx context.Context, statement string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	u := s.endpoint
	if s.database != "" {
		u += "?database=" + url.QueryEscape(s.database)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(statement))
	if err != nil {
		return "", errors.NewSinkError(errors.CodeTransportFailure, "failed to build sink request", err)
	}
	if s.username != "" {
		req.SetBasicAuth(s.username, s.password)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", errors.NewSinkError(errors.CodeTransportFailure, "sink request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.NewSinkError(errors.CodeTransportFailure, "failed to read sink response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.NewSinkError(errors.CodeStatementRejected,
			fmt.Sprintf("sink returned status %d: %s", resp.StatusCode, excerpt(body)), nil)
	}

	return strings.TrimSpace(string(body)), nil
}

// InsertEvents bulk-writes the batch as one literal-tuple statement.
func (s *HTTPSink) InsertEvents(ctx context.Context, events []types.Event) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(events))
	for _, ev := range events {
		rows = append(rows, eventRow(ev))
	}
	return s.Exec(ctx, buildInsert("events", eventColumns, rows))
}

// InsertOrders bulk-writes the batch as one literal-tuple statement.
func (s *HTTPSink) InsertOrders(ctx context.Context, orders []types.Order) error {
	if len(orders) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, orderRow(o))
	}
	return s.Exec(ctx, buildInsert("orders", orderColumns, rows))
}

// InsertUsers bulk-writes users dimension rows.
func (s *HTTPSink) InsertUsers(ctx context.Context, users []types.User) error {
	if len(users) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(users))
	for _, u := range users {
		rows = append(rows, userRow(u))
	}
	return s.Exec(ctx, buildInsert("users", userColumns, rows))
}

// InsertProducts bulk-writes products dimension rows.
func (s *HTTPSink) InsertProducts(ctx context.Context, products []types.Product) error {
	if len(products) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(products))
	for _, p := range products {
		rows = append(rows, productRow(p))
	}
	return s.Exec(ctx, buildInsert("products", productColumns, rows))
}

// Scalar runs a single-value query and returns the scalar text.
func (s *HTTPSink) Scalar(ctx context.Context, query string) (string, error) {
	return s.post(ctx, query)
}

// Exec runs a statement whose success is an empty response body.
func (s *HTTPSink) Exec(ctx context.Context, statement string) error {
	body, err := s.post(ctx, statement)
	if err != nil {
		return err
	}
	if body != "" {
		return errors.NewSinkError(errors.CodeStatementRejected,
			fmt.Sprintf("unexpected response body: %s", excerpt([]byte(body))), nil)
	}
	return nil
}

// EnsureSchema creates the tables if they do not exist.
func (s *HTTPSink) EnsureSchema(ctx context.Context) error {
	for _, ddl := range columnarDDL {
		if err := s.Exec(ctx, ddl); err != nil {
			return err
		}
	}
	return nil
}

// Ping verifies connectivity with a trivial scalar round trip.
func (s *HTTPSink) Ping(ctx context.Context) error {
	v, err := s.Scalar(ctx, "SELECT 1")
	if err != nil {
		return err
	}
	if v != "1" {
		return errors.NewSinkError(errors.CodeTransportFailure,
			fmt.Sprintf("unexpected ping response: %q", v), nil)
	}
	return nil
}

// Close drops idle connections.
func (s *HTTPSink) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// excerpt truncates a response body for error messages.
func excerpt(body []byte) string {
	const max = 200
	text := strings.TrimSpace(string(body))
	if len(text) > max {
		return text[:max] + "..."
	}
	return text
}
