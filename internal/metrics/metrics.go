// Package metrics exposes Prometheus instrumentation for the upstream
// provider calls. Everything registers on the default registry and is
// served by the monitor command's /metrics endpoint.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tokenscope_provider_requests_total",
		Help: "Upstream provider requests by provider and outcome.",
	}, []string{"provider", "outcome"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tokenscope_provider_request_duration_seconds",
		Help:    "Upstream provider request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tokenscope_provider_retries_total",
		Help: "HTTP retries by provider.",
	}, []string{"provider"})

	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tokenscope_provider_breaker_open",
		Help: "1 when the provider circuit breaker is open.",
	}, []string{"provider"})

	reportsBuilt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tokenscope_reports_built_total",
		Help: "Token reports built, by data-source provenance.",
	}, []string{"source"})

	scansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tokenscope_watchlist_scans_total",
		Help: "Completed watchlist scan passes.",
	})
)

// RecordRequest records one finished upstream request.
func RecordRequest(provider string, ok bool, d time.Duration) {
	outcome := "success"
	if !ok {
		outcome = "error"
	}
	requestsTotal.WithLabelValues(provider, outcome).Inc()
	requestDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// RecordRetry records one HTTP retry attempt.
func RecordRetry(provider string) {
	retriesTotal.WithLabelValues(provider).Inc()
}

// SetBreakerOpen flips the breaker gauge for a provider.
func SetBreakerOpen(provider string, open bool) {
	v := 0.0
	if open {
		v = 1.0
	}
	breakerState.WithLabelValues(provider).Set(v)
}

// RecordReport counts one built report by provenance.
func RecordReport(source string) {
	reportsBuilt.WithLabelValues(source).Inc()
}

// RecordScan counts one completed watchlist pass.
func RecordScan() {
	scansTotal.Inc()
}
