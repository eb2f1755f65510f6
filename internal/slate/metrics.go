package slate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// EvaluationsTotal tracks completed market evaluations by result.
	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoopsedge_slate_evaluations_total",
			Help: "Total number of completed market evaluations",
		},
		[]string{"result"},
	)

	// OmissionsTotal tracks markets that produced no evaluation, by reason.
	OmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoopsedge_slate_omissions_total",
			Help: "Total number of omitted markets",
		},
		[]string{"reason"},
	)

	// DuplicatesDroppedTotal tracks evaluations dropped by dedup.
	DuplicatesDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hoopsedge_slate_duplicates_dropped_total",
		Help: "Total number of duplicate (game, market) evaluations dropped",
	})

	// RunDurationSeconds tracks wall time of one slate run.
	RunDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hoopsedge_slate_run_duration_seconds",
		Help:    "Duration of a slate aggregation run",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
	})

	// EstimatorLatencySeconds tracks probability estimator calls.
	EstimatorLatencySeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hoopsedge_estimator_latency_seconds",
		Help:    "Latency of probability estimator calls",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
	})
)
