package stream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	ConnectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hoopsedge_stream_clients",
		Help: "Number of connected WebSocket subscribers",
	})

	MessagesBroadcastTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoopsedge_stream_messages_total",
			Help: "Total number of broadcast messages by type",
		},
		[]string{"type"},
	)

	MessagesDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hoopsedge_stream_dropped_total",
		Help: "Total number of subscribers dropped for falling behind",
	})
)
