package feed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// FetchesTotal tracks slate fetches by source and status.
	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoopsedge_feed_fetches_total",
			Help: "Total number of slate fetches",
		},
		[]string{"source", "status"},
	)

	// GamesFetched tracks the size of the last fetched slate.
	GamesFetched = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hoopsedge_feed_games",
		Help: "Number of games in the last fetched slate",
	})

	// GamesSkippedTotal tracks feed games dropped before evaluation.
	GamesSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoopsedge_feed_games_skipped_total",
			Help: "Total number of feed games skipped",
		},
		[]string{"reason"},
	)

	// OddsAPIRequestsRemaining is the quota reported by the odds provider.
	OddsAPIRequestsRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hoopsedge_odds_api_requests_remaining",
		Help: "Requests remaining in the odds provider quota",
	})

	// SnapshotCacheTotal tracks Redis snapshot cache results.
	SnapshotCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoopsedge_feed_snapshot_cache_total",
			Help: "Slate snapshot cache lookups by result",
		},
		[]string{"result"},
	)
)
