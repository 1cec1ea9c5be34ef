package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/restaurant-ecommerce/notification-service/internal/domain"
)

// Metrics records per-channel outcomes. A nil *Metrics records nothing.
type Metrics struct {
	deliveries *prometheus.CounterVec
	dispatches *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "notification_channel_deliveries_total",
			Help: "Channel delivery attempts by channel, notification kind and outcome.",
		}, []string{"channel", "kind", "outcome"}),
		dispatches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "notification_dispatches_total",
			Help: "Notification requests by type and overall outcome.",
		}, []string{"type", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "notification_dispatch_duration_seconds",
			Help:    "Time taken to fan out one notification request.",
			Buckets: prometheus.DefBuckets,
		}, []string{"type"}),
	}
}

func (m *Metrics) observe(notificationType string, success, duplicate bool, results []domain.ChannelResult, took time.Duration) {
	if m == nil {
		return
	}
	for _, r := range results {
		m.deliveries.WithLabelValues(string(r.Channel), string(r.Kind), outcome(r)).Inc()
	}
	status := "failed"
	switch {
	case duplicate:
		status = "duplicate"
	case success:
		status = "success"
	}
	m.dispatches.WithLabelValues(notificationType, status).Inc()
	m.duration.WithLabelValues(notificationType).Observe(took.Seconds())
}

func (m *Metrics) rejected(notificationType string) {
	if m == nil {
		return
	}
	m.dispatches.WithLabelValues(notificationType, "invalid").Inc()
}

func outcome(r domain.ChannelResult) string {
	if r.Success {
		return "sent"
	}
	if r.Failure != "" {
		return string(r.Failure)
	}
	return "failed"
}
