package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "hoopsedge_notifications_total",
		Help: "Total number of Telegram notifications by status",
	},
	[]string{"status"},
)
