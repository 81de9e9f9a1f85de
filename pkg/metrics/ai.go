package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AIMetrics counts completion calls per operation and outcome.
type AIMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// Outcome labels.
const (
	OutcomeStructured = "structured"
	OutcomeText       = "text"
	OutcomeError      = "error"
)

func NewAIMetrics(reg prometheus.Registerer) *AIMetrics {
	if reg == nil {
		return &AIMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ai_requests_total",
		Help: "Completion requests by operation and outcome.",
	}, []string{"operation", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ai_request_duration_seconds",
		Help:    "Completion latency in seconds.",
		Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
	}, []string{"operation"})
	reg.MustRegister(requests, latency)
	return &AIMetrics{requests: requests, latency: latency}
}

func (m *AIMetrics) Observe(operation, outcome string, elapsed time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	operation = normalizeLabel(operation)
	m.requests.WithLabelValues(operation, normalizeLabel(outcome)).Inc()
	m.latency.WithLabelValues(operation).Observe(elapsed.Seconds())
}
