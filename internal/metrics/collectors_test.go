package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestUpstreamStarted(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	c := NewCollectors(reg)

	done := c.UpstreamStarted("data-api")
	if got := testutil.ToFloat64(c.upstreamInFlight.WithLabelValues("data-api")); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
	done(nil)
	c.UpstreamStarted("data-api")(errors.New("boom"))

	if got := testutil.ToFloat64(c.upstreamInFlight.WithLabelValues("data-api")); got != 0 {
		t.Errorf("in flight = %v, want 0", got)
	}
	if got := testutil.ToFloat64(c.upstreamRequests.WithLabelValues("data-api", OutcomeSuccess)); got != 1 {
		t.Errorf("success count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.upstreamRequests.WithLabelValues("data-api", OutcomeError)); got != 1 {
		t.Errorf("error count = %v, want 1", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if len(families) == 0 {
		t.Error("registry gathered no metric families")
	}
}

func TestTabulationDone(t *testing.T) {
	t.Parallel()
	c := Nop()
	c.TabulationDone("summary", 10*time.Millisecond, nil)
	c.FetchTasks(3)
	c.Proxied()

	if got := testutil.ToFloat64(c.tabulations.WithLabelValues("summary", OutcomeSuccess)); got != 1 {
		t.Errorf("tabulations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.fetchTasks); got != 3 {
		t.Errorf("fetch tasks = %v, want 3", got)
	}
	if got := testutil.ToFloat64(c.proxiedRequests); got != 1 {
		t.Errorf("proxied = %v, want 1", got)
	}
}

func TestSpans(t *testing.T) {
	t.Parallel()
	ctx, span := StartSpan(context.Background(), "test")
	if ctx == nil || span == nil {
		t.Fatal("StartSpan returned nil")
	}
	EndSpan(span, errors.New("failed"))
}
