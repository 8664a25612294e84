package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Collectors groups the collectors of one process. Build it once with a
// registerer; a nil registerer yields working but unregistered collectors,
// which is what tests use.
type Collectors struct {
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	upstreamInFlight *prometheus.GaugeVec
	proxiedRequests  prometheus.Counter

	tabulations        *prometheus.CounterVec
	tabulationDuration *prometheus.HistogramVec
	fetchTasks         prometheus.Counter
}

// NewCollectors creates the collectors and registers them with reg.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	f := promauto.With(reg)
	return &Collectors{
		upstreamRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tabulate_upstream_requests_total",
			Help: "Upstream calls by service and outcome.",
		}, []string{"service", "outcome"}),
		upstreamDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tabulate_upstream_request_duration_seconds",
			Help:    "Latency of upstream calls.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"service"}),
		upstreamInFlight: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tabulate_upstream_in_flight",
			Help: "Upstream calls currently running.",
		}, []string{"service"}),
		proxiedRequests: f.NewCounter(prometheus.CounterOpts{
			Name: "tabulate_upstream_proxied_requests_total",
			Help: "Data API calls sent through the proxy because the URL was too long.",
		}),
		tabulations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tabulate_tabulations_total",
			Help: "Tabulations by mode and outcome.",
		}, []string{"mode", "outcome"}),
		tabulationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tabulate_tabulation_duration_seconds",
			Help:    "End to end duration of a tabulation.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"mode"}),
		fetchTasks: f.NewCounter(prometheus.CounterOpts{
			Name: "tabulate_fetch_tasks_total",
			Help: "Fetch tasks dispatched by the orchestrator.",
		}),
	}
}

// Nop returns unregistered collectors.
func Nop() *Collectors { return NewCollectors(nil) }

// UpstreamStarted marks a call as in flight and returns the function that
// records its completion.
func (c *Collectors) UpstreamStarted(service string) func(err error) {
	start := time.Now()
	c.upstreamInFlight.WithLabelValues(service).Inc()
	return func(err error) {
		c.upstreamInFlight.WithLabelValues(service).Dec()
		c.upstreamDuration.WithLabelValues(service).Observe(time.Since(start).Seconds())
		c.upstreamRequests.WithLabelValues(service, outcome(err)).Inc()
	}
}

// Proxied counts a data API call sent through the proxy.
func (c *Collectors) Proxied() { c.proxiedRequests.Inc() }

// FetchTasks counts dispatched fetch tasks.
func (c *Collectors) FetchTasks(n int) { c.fetchTasks.Add(float64(n)) }

// TabulationDone records a finished tabulation.
func (c *Collectors) TabulationDone(mode string, d time.Duration, err error) {
	c.tabulationDuration.WithLabelValues(mode).Observe(d.Seconds())
	c.tabulations.WithLabelValues(mode, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}
