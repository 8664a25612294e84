package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/agbru/tabulate/internal/errors"
	"github.com/agbru/tabulate/internal/metadata"
	"github.com/agbru/tabulate/internal/namber"
	"github.com/agbru/tabulate/internal/orchestration"
	"github.com/agbru/tabulate/internal/record"
	"github.com/agbru/tabulate/internal/tabulate"
)

type stubTabulator struct {
	err   error
	delay time.Duration
}

func (s stubTabulator) Tabulate(context.Context, orchestration.TabularParams) (tabulate.TabularResult, error) {
	return tabulate.TabularResult{}, s.err
}

func (s stubTabulator) Summarize(ctx context.Context, _ orchestration.TabularParams) (tabulate.SummaryResult, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	out := make(tabulate.SummaryResult)
	out.SetComputed(record.NoIndustryID, "POP", namber.New(1234), nil)
	return out, nil
}

func (s stubTabulator) Compare(context.Context, tabulate.ComparisonParams) (tabulate.ComparisonResult, error) {
	return tabulate.ComparisonResult{}, s.err
}

func (s stubTabulator) Rank(context.Context, tabulate.RankingParams) (tabulate.RankingResult, error) {
	return tabulate.RankingResult{}, s.err
}

func (s stubTabulator) TimeSeries(context.Context, tabulate.TimeSeriesParams) (tabulate.TimeSeriesResult, error) {
	return tabulate.TimeSeriesResult{}, s.err
}

const summaryBody = `{"variables": ["POP"], "geographies": {"county": [{"id": "36061", "name": "New York County"}]}}`

func newTestServer(t *testing.T, tab stubTabulator, cfg Config) *Server {
	t.Helper()
	repo, err := metadata.LoadFile("../metadata/testdata/catalog.yaml")
	require.NoError(t, err)
	return NewServer(tab, repo, cfg, WithLogger(newTestLogger()))
}

func TestHandleTabulation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		tab    stubTabulator
		method string
		path   string
		body   string
		status int
	}{
		{"summary", stubTabulator{}, http.MethodPost, "/v1/summary", summaryBody, http.StatusOK},
		{"wrong method", stubTabulator{}, http.MethodGet, "/v1/summary", "", http.StatusMethodNotAllowed},
		{"malformed body", stubTabulator{}, http.MethodPost, "/v1/summary", "{", http.StatusBadRequest},
		{"unknown field", stubTabulator{}, http.MethodPost, "/v1/summary", `{"colour": "red"}`, http.StatusBadRequest},
		{"missing geographies", stubTabulator{}, http.MethodPost, "/v1/summary", `{"variables": ["POP"]}`, http.StatusBadRequest},
		{"unknown variable", stubTabulator{}, http.MethodPost, "/v1/tabulate", strings.Replace(summaryBody, "POP", "NOPE", 1), http.StatusNotFound},
		{"upstream failure", stubTabulator{err: apperrors.TransportError{Service: "data-api", Status: http.StatusServiceUnavailable}}, http.MethodPost, "/v1/summary", summaryBody, http.StatusBadGateway},
		{"unknown path", stubTabulator{}, http.MethodPost, "/v1/pie", summaryBody, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newTestServer(t, tt.tab, Config{})
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			s.Handler().ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestHandleTabulationWritesResult(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, stubTabulator{}, Config{})
	req := httptest.NewRequest(http.MethodPost, "/v1/summary", strings.NewReader(summaryBody))
	req.Header.Set(requestIDHeader, "req-42")
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-42", rec.Header().Get(requestIDHeader))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	var body map[string]struct {
		Industries map[string]map[string]any `json:"industries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 1234, body["POP"].Industries[record.NoIndustryID]["stat"])
}

func TestHandleTabulationTimeout(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, stubTabulator{delay: time.Second}, Config{RequestTimeout: 10 * time.Millisecond})
	req := httptest.NewRequest(http.MethodPost, "/v1/summary", strings.NewReader(summaryBody))
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	var body struct {
		RequestID string `json:"requestId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.RequestID, "a request id is generated when the caller sends none")
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, stubTabulator{}, Config{})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestStatusFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		want int
	}{
		{apperrors.ValidationError{Field: "x"}, http.StatusBadRequest},
		{apperrors.NewConfigError("bad"), http.StatusBadRequest},
		{apperrors.NewNotFoundError("Geo Type", "tract"), http.StatusNotFound},
		{apperrors.WrapError(context.DeadlineExceeded, "fetch"), http.StatusGatewayTimeout},
		{apperrors.TabulationError{Cause: apperrors.TransportError{Service: "data-api", Status: http.StatusServiceUnavailable}}, http.StatusBadGateway},
		{apperrors.Fail("unhandled"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), "%v", tt.err)
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, stubTabulator{}, Config{Addr: "127.0.0.1:0"})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}
