package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// TransitionsTotal tracks lifecycle transitions by target state.
	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoopsedge_ledger_transitions_total",
			Help: "Total number of bet lifecycle transitions",
		},
		[]string{"state"},
	)

	// TransitionsRejectedTotal tracks refused lifecycle commands by reason.
	TransitionsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoopsedge_ledger_transitions_rejected_total",
			Help: "Total number of refused bet lifecycle commands",
		},
		[]string{"reason"},
	)

	// BankrollBalance is the current bankroll in currency.
	BankrollBalance = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hoopsedge_bankroll_balance",
		Help: "Current bankroll balance in currency",
	})

	// RealizedUnits tracks realized units per settled bet.
	RealizedUnits = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hoopsedge_ledger_realized_units",
		Help:    "Realized units per settled bet",
		Buckets: []float64{-3, -2, -1, -0.5, 0, 0.5, 1, 2, 3, 5},
	})
)
