package sync

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels of queue_items_total
const (
	outcomePushed    = "pushed"
	outcomeRejected  = "rejected"
	outcomeRetried   = "retried"
	outcomeExhausted = "exhausted"
)

// Metrics holds the sync engine collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	passes   *prometheus.CounterVec
	items    *prometheus.CounterVec
	pending  prometheus.Gauge
	duration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tracker",
			Subsystem: "sync",
			Name:      "passes_total",
			Help:      "Sync passes by result.",
		}, []string{"result"}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tracker",
			Subsystem: "sync",
			Name:      "queue_items_total",
			Help:      "Queue items processed by push, by outcome.",
		}, []string{"outcome"}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tracker",
			Subsystem: "sync",
			Name:      "pending_items",
			Help:      "Queue length after the last pass.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tracker",
			Subsystem: "sync",
			Name:      "pass_duration_seconds",
			Help:      "Duration of sync passes.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(m.passes, m.items, m.pending, m.duration)
	return m
}

func (m *Metrics) observePass(status Status, pending int, d time.Duration) {
	if m == nil {
		return
	}
	m.passes.WithLabelValues(string(status)).Inc()
	m.pending.Set(float64(pending))
	m.duration.Observe(d.Seconds())
}

func (m *Metrics) observeItem(outcome string) {
	if m == nil {
		return
	}
	m.items.WithLabelValues(outcome).Inc()
}
