package metrics

import "github.com/prometheus/client_golang/prometheus"

// FeedMetrics tracks live-feed subscriptions and pushed snapshots.
type FeedMetrics struct {
	subscribers prometheus.Gauge
	snapshots   prometheus.Counter
}

func NewFeedMetrics(reg prometheus.Registerer) *FeedMetrics {
	if reg == nil {
		return &FeedMetrics{}
	}
	subscribers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "feed_subscribers",
		Help: "Open live-feed subscriptions on this instance.",
	})
	snapshots := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feed_snapshots_total",
		Help: "Snapshots offered to live-feed subscribers.",
	})
	reg.MustRegister(subscribers, snapshots)
	return &FeedMetrics{subscribers: subscribers, snapshots: snapshots}
}

func (m *FeedMetrics) Subscribed() {
	if m == nil || m.subscribers == nil {
		return
	}
	m.subscribers.Inc()
}

func (m *FeedMetrics) Unsubscribed() {
	if m == nil || m.subscribers == nil {
		return
	}
	m.subscribers.Dec()
}

func (m *FeedMetrics) SnapshotsSent(n int) {
	if m == nil || m.snapshots == nil || n <= 0 {
		return
	}
	m.snapshots.Add(float64(n))
}
