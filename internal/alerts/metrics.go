package alerts

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	AlertsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbscan_alerts_sent_total",
		Help: "Webhook alerts posted successfully",
	})

	AlertsSuppressedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbscan_alerts_suppressed_total",
		Help: "Alerts skipped because the pair was in cooldown",
	})

	AlertsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbscan_alerts_failed_total",
		Help: "Webhook posts that did not return 2xx",
	})
)
