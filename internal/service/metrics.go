package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ResultsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_results_submitted_total",
			Help: "Leaderboard submissions by class and outcome",
		},
		[]string{"difficulty", "rule", "status"},
	)
	StoreLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "result_store_duration_seconds",
			Help:    "Latency of result store operations",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(ResultsSubmitted)
	prometheus.MustRegister(StoreLatency)
}
