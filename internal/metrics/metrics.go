// Package metrics holds the process-wide Prometheus collectors for refresh
// cycles and fetch attempts. Price gauges live with the gauge publisher.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metalrates_refresh_total",
			Help: "Total number of refresh cycles per outcome",
		},
		[]string{"outcome"},
	)

	RefreshDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "metalrates_refresh_duration_seconds",
			Help:    "Duration of a fetch and parse cycle in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	LastSuccessTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "metalrates_last_success_timestamp",
			Help: "Unix timestamp of the last cycle that produced a price table",
		},
	)

	FetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metalrates_fetch_attempts_total",
			Help: "Total number of HTTP attempts per transport mode and result",
		},
		[]string{"mode", "result"},
	)
)

// ObserveRefresh records one finished cycle. outcome is "ok" or an error type.
func ObserveRefresh(outcome string, startedAt, finishedAt time.Time) {
	RefreshDurationSeconds.Observe(finishedAt.Sub(startedAt).Seconds())
	RefreshTotal.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		LastSuccessTimestamp.Set(float64(finishedAt.Unix()))
	}
}

// ObserveFetchAttempt counts one HTTP attempt.
func ObserveFetchAttempt(mode, result string) {
	FetchAttemptsTotal.WithLabelValues(mode, result).Inc()
}
