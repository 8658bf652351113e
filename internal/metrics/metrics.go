// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dayscheduler_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dayscheduler_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dayscheduler_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"route"},
	)
	SyncRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dayscheduler_sync_runs_total",
			Help: "Template to schedule sync runs by outcome",
		},
		[]string{"outcome"},
	)
	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dayscheduler_upstream_requests_total",
			Help: "Calls to third-party time services by service and outcome",
		},
		[]string{"service", "outcome"},
	)
	TimesCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dayscheduler_times_cache_total",
			Help: "Times cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, RateLimited, SyncRuns, UpstreamRequests, TimesCache)
}
