// Package metrics collects Prometheus metrics for the server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the services and the transport report into.
type Recorder interface {
	RecordRPC(method, code string, d time.Duration)
	RecordRateLimited(method string)
	RecordLogin(success bool)
	RecordConflict(fields []string)
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	rateLimited *prometheus.CounterVec
	logins      *prometheus.CounterVec
	conflicts   *prometheus.CounterVec
}

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simplog_rpc_requests_total",
			Help: "Handled RPCs by method and status code.",
		}, []string{"method", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "simplog_rpc_duration_seconds",
			Help:    "RPC handling latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simplog_rate_limited_total",
			Help: "Requests rejected by the per-peer rate limiter.",
		}, []string{"method"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simplog_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simplog_employee_conflicts_total",
			Help: "Employee writes rejected for a taken natural key, per key.",
		}, []string{"field"}),
	}

	reg.MustRegister(c.requests, c.latency, c.rateLimited, c.logins, c.conflicts)

	return c
}

func (c *Collector) RecordRPC(method, code string, d time.Duration) {
	c.requests.WithLabelValues(method, code).Inc()
	c.latency.WithLabelValues(method).Observe(d.Seconds())
}

func (c *Collector) RecordRateLimited(method string) {
	c.rateLimited.WithLabelValues(method).Inc()
}

func (c *Collector) RecordLogin(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	c.logins.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordConflict(fields []string) {
	for _, f := range fields {
		c.conflicts.WithLabelValues(f).Inc()
	}
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordRPC(string, string, time.Duration) {}
func (Nop) RecordRateLimited(string)                {}
func (Nop) RecordLogin(bool)                        {}
func (Nop) RecordConflict([]string)                 {}
