package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector provides application metrics collection.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	// Upstream metrics
	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration *prometheus.HistogramVec

	// City list metrics
	PagesLoadedTotal        *prometheus.CounterVec
	EnrichmentFailuresTotal prometheus.Counter
	ActiveSessions          prometheus.Gauge
}

// NewCollector creates a collector backed by its own registry so that
// multiple instances (tests) never collide on registration.
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		UpstreamRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Total number of upstream API requests by upstream and outcome",
			},
			[]string{"upstream", "outcome"},
		),

		UpstreamRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_request_duration_seconds",
				Help:      "Upstream API request duration in seconds",
				Buckets:   []float64{0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0, 10.0},
			},
			[]string{"upstream"},
		),

		PagesLoadedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "city_pages_loaded_total",
				Help:      "City directory pages processed by result",
			},
			[]string{"result"},
		),

		EnrichmentFailuresTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "city_enrichment_failures_total",
				Help:      "Cities kept without weather because the lookup failed",
			},
		),

		ActiveSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_sessions",
				Help:      "Number of live city list sessions",
			},
		),
	}
}

// Handler exposes the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveUpstream records one upstream call.
func (c *Collector) ObserveUpstream(upstream, outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.UpstreamRequestsTotal.WithLabelValues(upstream, outcome).Inc()
	c.UpstreamRequestDuration.WithLabelValues(upstream).Observe(d.Seconds())
}

// PageLoaded records the result of one aggregator page load.
func (c *Collector) PageLoaded(result string) {
	if c == nil {
		return
	}
	c.PagesLoadedTotal.WithLabelValues(result).Inc()
}

// EnrichmentFailed counts a city left without weather.
func (c *Collector) EnrichmentFailed() {
	if c == nil {
		return
	}
	c.EnrichmentFailuresTotal.Inc()
}

// SetActiveSessions publishes the current session count.
func (c *Collector) SetActiveSessions(n int) {
	if c == nil {
		return
	}
	c.ActiveSessions.Set(float64(n))
}
