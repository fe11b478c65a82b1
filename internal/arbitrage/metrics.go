package arbitrage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	OpportunitiesDetectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbscan_arbitrage_opportunities_detected_total",
		Help: "Profitable arbitrage opportunities emitted",
	})

	OpportunitiesRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbscan_arbitrage_opportunities_rejected_total",
			Help: "Buy-directions rejected, by reason",
		},
		[]string{"reason"},
	)

	ROIPercent = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arbscan_arbitrage_roi_percent",
		Help:    "ROI of emitted opportunities in percent",
		Buckets: []float64{1, 2, 5, 10, 20, 30, 50, 75, 100},
	})
)
