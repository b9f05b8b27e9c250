package battle

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes gameplay counters on /metrics.
type Metrics struct {
	DraftsStarted     prometheus.Counter
	SessionsStarted   prometheus.Counter
	ActiveSessions    prometheus.Gauge
	QuestionsResolved *prometheus.CounterVec
	PowerUpsGranted   *prometheus.CounterVec
	PowerUpsUsed      *prometheus.CounterVec
}

// NewMetrics registers gameplay metrics with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DraftsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "battle_drafts_started_total",
			Help: "Category drafts created.",
		}),
		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "battle_sessions_started_total",
			Help: "Game sessions created.",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "battle_sessions_active",
			Help: "Game sessions currently in memory.",
		}),
		QuestionsResolved: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "battle_questions_resolved_total",
			Help: "Resolved questions by awarded team.",
		}, []string{"awarded"}),
		PowerUpsGranted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "battle_power_ups_granted_total",
			Help: "Power-ups granted at milestones.",
		}, []string{"kind"}),
		PowerUpsUsed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "battle_power_ups_used_total",
			Help: "Power-ups consumed by teams.",
		}, []string{"kind"}),
	}
}
