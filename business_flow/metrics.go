package businessflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Forecast computations partitioned by competitor and outcome
	forecastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricecast_forecasts_total",
			Help: "Total number of forecast computations",
		},
		[]string{"competitor", "outcome"},
	)

	// Feature build plus model predict latency per competitor
	forecastDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricecast_forecast_duration_seconds",
			Help:    "Forecast computation latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"competitor"},
	)

	// Recorded actual prices
	actualPricesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pricecast_actual_prices_total",
			Help: "Total number of recorded actual prices",
		},
	)
)

const (
	outcomeOK     = "ok"
	outcomeFailed = "failed"
)
