package estimator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// EstimateRequestsTotal tracks estimate calls by source and status.
	EstimateRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoopsedge_estimate_requests_total",
			Help: "Total number of probability estimate requests",
		},
		[]string{"source", "status"},
	)

	// EstimateCacheHitsTotal tracks estimates served from cache.
	EstimateCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hoopsedge_estimate_cache_hits_total",
		Help: "Total number of estimates served from cache",
	})

	// EstimateCacheMissesTotal tracks estimates that required a call.
	EstimateCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hoopsedge_estimate_cache_misses_total",
		Help: "Total number of estimate cache misses",
	})
)
