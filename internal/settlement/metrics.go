package settlement

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// AutoSettledTotal tracks bets settled from final scores by outcome.
	AutoSettledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoopsedge_auto_settled_total",
			Help: "Total number of bets settled from final scores",
		},
		[]string{"outcome"},
	)

	// AutoSettleUnmatchedTotal tracks approved bets with no final score yet.
	AutoSettleUnmatchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hoopsedge_auto_settle_unmatched_total",
		Help: "Total number of approved bets without a matching final score",
	})
)
