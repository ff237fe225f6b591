package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 标签取值都是有限集合（操作名、结果、实体类别）
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tdcore_tick_duration_seconds",
		Help:    "Time spent in one match update",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025},
	})

	entityCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tdcore_entities",
		Help: "Live entities in the hosted match",
	}, []string{"kind"})

	matchGold = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tdcore_match_gold",
		Help: "Gold of the hosted match",
	})

	matchLives = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tdcore_match_lives",
		Help: "Lives of the hosted match",
	})

	actionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tdcore_actions_total",
		Help: "Player actions by result",
	}, []string{"action", "result"})

	rateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tdcore_actions_rate_limited_total",
		Help: "Actions rejected by the per-client rate limiter",
	})

	wsConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tdcore_websocket_connections",
		Help: "Currently connected snapshot subscribers",
	})

	wsMessages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tdcore_websocket_messages_total",
		Help: "Snapshot messages broadcast",
	})
)

func recordAction(action string, accepted bool) {
	result := "accepted"
	if !accepted {
		result = "rejected"
	}
	actionsTotal.WithLabelValues(action, result).Inc()
}
