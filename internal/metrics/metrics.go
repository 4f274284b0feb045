// Package metrics exposes Prometheus metrics for note fetches.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records fetch outcomes. It satisfies xhsnote.Recorder.
type Collector struct {
	fetches      *prometheus.CounterVec
	fetchLatency *prometheus.HistogramVec
	httpRequests *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "xhsnote_fetch_total",
			Help: "Note fetches by envelope status and error kind.",
		}, []string{"status", "kind"}),
		fetchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "xhsnote_fetch_duration_seconds",
			Help:    "End-to-end note fetch latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "xhsnote_http_requests_total",
			Help: "Inbound HTTP requests by route and response code.",
		}, []string{"route", "code"}),
	}

	reg.MustRegister(c.fetches, c.fetchLatency, c.httpRequests)

	return c
}

// RecordFetch records one fetch. kind is empty for successes.
func (c *Collector) RecordFetch(status, kind string, duration time.Duration) {
	if kind == "" {
		kind = "none"
	}
	c.fetches.WithLabelValues(status, kind).Inc()
	c.fetchLatency.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordHTTPRequest records one inbound HTTP request
func (c *Collector) RecordHTTPRequest(route string, statusCode int) {
	c.httpRequests.WithLabelValues(route, strconv.Itoa(statusCode)).Inc()
}

// Handler returns the Prometheus scrape handler for gatherer
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
