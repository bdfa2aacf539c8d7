package ws

import "github.com/prometheus/client_golang/prometheus"

var (
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ws_active_sessions",
		Help: "Number of live websocket game sessions",
	})
	GamesCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ws_games_completed_total",
			Help: "Games completed over websocket sessions",
		},
		[]string{"difficulty", "rule"},
	)
)

func init() {
	prometheus.MustRegister(ActiveSessions)
	prometheus.MustRegister(GamesCompleted)
}
