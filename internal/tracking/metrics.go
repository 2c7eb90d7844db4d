package tracking

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the tracking and delivery counters. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	events           *prometheus.CounterVec
	writeFailures    *prometheus.CounterVec
	rejectedClicks   *prometheus.CounterVec
	deliveryFailures *prometheus.CounterVec
}

// NewMetrics registers the counters with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		events: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tracking_events_total",
			Help: "Tracking records written, by email type and status.",
		}, []string{"email_type", "status"}),
		writeFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tracking_write_failures_total",
			Help: "Tracking record writes that failed, by status.",
		}, []string{"status"}),
		rejectedClicks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tracking_rejected_clicks_total",
			Help: "Click callbacks answered without a redirect, by reason.",
		}, []string{"reason"}),
		deliveryFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "email_delivery_failures_total",
			Help: "Emails the provider did not accept after all attempts, by email type.",
		}, []string{"email_type"}),
	}
}

func (m *Metrics) recordEvent(t EmailType, s Status) {
	if m != nil {
		m.events.WithLabelValues(string(t), string(s)).Inc()
	}
}

func (m *Metrics) recordWriteFailure(s Status) {
	if m != nil {
		m.writeFailures.WithLabelValues(string(s)).Inc()
	}
}

func (m *Metrics) rejectClick(reason string) {
	if m != nil {
		m.rejectedClicks.WithLabelValues(reason).Inc()
	}
}

// DeliveryFailed counts an email the provider did not accept.
func (m *Metrics) DeliveryFailed(t EmailType) {
	if m != nil {
		m.deliveryFailures.WithLabelValues(string(t)).Inc()
	}
}
