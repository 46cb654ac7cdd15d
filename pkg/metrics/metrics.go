package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheLookups counts cache reads by entity (products|user) and outcome (hit|miss|fault).
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cache_lookups_total",
			Help: "Total number of cache lookups",
		},
		[]string{"entity", "outcome"},
	)

	// CacheEvictions counts entries removed by reason (expired|integrity|invalidated).
	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cache_evictions_total",
			Help: "Total number of cache evictions",
		},
		[]string{"entity", "reason"},
	)

	// BackendRequests counts outbound calls to the storefront backend by method and result.
	BackendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_backend_requests_total",
			Help: "Total number of requests issued to the remote backend",
		},
		[]string{"method", "result"},
	)

	// APILatency measures HTTP request latencies of the local API surface.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
