package server

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agbru/tabulate/internal/logging"
)

func TestMetricsActiveRequests(t *testing.T) {
	t.Parallel()
	m := NewMetrics()
	require.NotNil(t, m.handler)

	m.IncrementActiveRequests()
	m.IncrementActiveRequests()
	m.DecrementActiveRequests()

	assert.EqualValues(t, 1, testutil.ToFloat64(m.activeRequests))
	assert.EqualValues(t, 2, testutil.ToFloat64(m.requestsTotal))
}

func TestMetricsWritePrometheus(t *testing.T) {
	t.Parallel()
	m := NewMetrics()
	m.IncrementActiveRequests()
	m.ObserveResponse("/v1/summary", http.StatusOK, 250*time.Millisecond)

	rec := httptest.NewRecorder()
	m.WritePrometheus(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	body := rec.Body.String()
	for _, name := range []string{
		"tabulate_active_requests",
		"tabulate_requests_total",
		`tabulate_responses_total{code="200",path="/v1/summary"} 1`,
		"tabulate_request_duration_seconds_bucket",
		"go_goroutines",
	} {
		assert.Contains(t, body, name)
	}
}

func TestMetricsSeparateRegistries(t *testing.T) {
	t.Parallel()
	a, b := NewMetrics(), NewMetrics()
	a.IncrementActiveRequests()
	assert.EqualValues(t, 0, testutil.ToFloat64(b.activeRequests))
	assert.NotSame(t, a.Registry(), b.Registry())
}

func TestServer_metricsMiddleware(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		path   string
		status int
		write  bool
	}{
		{"explicit status", "/v1/rank", http.StatusTeapot, true},
		{"implicit 200", "/v1/tabulate", http.StatusOK, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := &Server{metrics: NewMetrics()}
			h := s.metricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
				assert.EqualValues(t, 1, testutil.ToFloat64(s.metrics.activeRequests))
				if tt.write {
					w.WriteHeader(tt.status)
				}
				_, _ = w.Write([]byte("{}"))
			})

			rec := httptest.NewRecorder()
			h(rec, httptest.NewRequest(http.MethodPost, tt.path, http.NoBody))

			assert.Equal(t, tt.status, rec.Code)
			assert.EqualValues(t, 1, testutil.ToFloat64(s.metrics.responses.WithLabelValues(tt.path, strconv.Itoa(tt.status))))
			assert.EqualValues(t, 0, testutil.ToFloat64(s.metrics.activeRequests))
		})
	}
}

func TestServer_handleMetrics(t *testing.T) {
	t.Parallel()
	s := &Server{metrics: NewMetrics(), logger: newTestLogger()}

	rec := httptest.NewRecorder()
	s.handleMetrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tabulate_")

	for _, method := range []string{http.MethodPost, http.MethodPut} {
		rec := httptest.NewRecorder()
		s.handleMetrics(rec, httptest.NewRequest(method, "/metrics", http.NoBody))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
	}
}

// testLogger discards everything.
type testLogger struct{}

func newTestLogger() *testLogger                                  { return &testLogger{} }
func (l *testLogger) Info(_ string, _ ...logging.Field)           {}
func (l *testLogger) Warn(_ string, _ ...logging.Field)           {}
func (l *testLogger) Error(_ string, _ error, _ ...logging.Field) {}
func (l *testLogger) Debug(_ string, _ ...logging.Field)          {}
func (l *testLogger) Printf(_ string, _ ...any)                   {}
func (l *testLogger) Println(_ ...any)                            {}
