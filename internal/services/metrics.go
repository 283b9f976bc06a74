package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Auth metrics
	Signins *prometheus.CounterVec
	Signups prometheus.Counter

	// Tips feed
	TipsCreated prometheus.Counter

	// Classifier metrics
	ClassifierCalls   *prometheus.CounterVec
	ClassifierLatency prometheus.Histogram
}

// NewMetrics registers the application metrics with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Signins by outcome: success, invalid_credentials, error
		Signins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "creatorsmeet_signins_total",
			Help: "Total number of signin attempts by outcome",
		}, []string{"outcome"}),

		Signups: factory.NewCounter(prometheus.CounterOpts{
			Name: "creatorsmeet_signups_total",
			Help: "Total number of accounts created",
		}),

		TipsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "creatorsmeet_tips_created_total",
			Help: "Total number of mentor tips posted",
		}),

		// Classifier calls by outcome: success, cached, error
		ClassifierCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "creatorsmeet_classifier_calls_total",
			Help: "Total number of zero-shot classification calls by outcome",
		}, []string{"outcome"}),

		ClassifierLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "creatorsmeet_classifier_duration_seconds",
			Help:    "Zero-shot classification latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30}, // hosted models can cold-start
		}),
	}
}

// RecordSignin records a signin attempt outcome
func (m *Metrics) RecordSignin(outcome string) {
	if m == nil {
		return
	}
	m.Signins.WithLabelValues(outcome).Inc()
}

// RecordSignup records a created account
func (m *Metrics) RecordSignup() {
	if m == nil {
		return
	}
	m.Signups.Inc()
}

// RecordTipCreated records a posted tip
func (m *Metrics) RecordTipCreated() {
	if m == nil {
		return
	}
	m.TipsCreated.Inc()
}

// RecordClassifierCall records a classification outcome and its latency
func (m *Metrics) RecordClassifierCall(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.ClassifierCalls.WithLabelValues(outcome).Inc()
	m.ClassifierLatency.Observe(seconds)
}
