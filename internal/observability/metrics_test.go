package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.CyclesTotal.Inc()
	m.EventsInserted.Add(100)
	m.OrdersInserted.Add(20)
	m.InsertFailures.WithLabelValues("events").Inc()
	m.BatchesSpilled.WithLabelValues("events").Inc()
	m.SinkRows.WithLabelValues("events").Set(1500)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CyclesTotal))
	assert.Equal(t, 100.0, testutil.ToFloat64(m.EventsInserted))
	assert.Equal(t, 20.0, testutil.ToFloat64(m.OrdersInserted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InsertFailures.WithLabelValues("events")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InsertFailures.WithLabelValues("orders")))
	assert.Equal(t, 1500.0, testutil.ToFloat64(m.SinkRows.WithLabelValues("events")))
}

func TestMetricsEndpointExposition(t *testing.T) {
	m := NewMetrics()
	m.CyclesTotal.Inc()
	m.EventsInserted.Add(100)
	m.CycleDuration.Observe(0.25)

	srv := NewServer("127.0.0.1:0", m)
	ts := httptest.NewServer(srv.srv.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, "streamforge_cycles_total 1")
	assert.Contains(t, text, "streamforge_events_inserted_total 100")
	assert.Contains(t, text, "streamforge_cycle_duration_seconds_count 1")
}

func TestHealthEndpoint(t *testing.T) {
	srv := NewServer("127.0.0.1:0", NewMetrics())
	ts := httptest.NewServer(srv.srv.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `"status":"ok"`))
}
