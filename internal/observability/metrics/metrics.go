package metrics

import "github.com/prometheus/client_golang/prometheus"

// EngineMetrics exposes counters/histograms for the appointment engine.
type EngineMetrics struct {
	transitionsTotal *prometheus.CounterVec
	fanoutTotal      *prometheus.CounterVec
	fanoutLatency    *prometheus.HistogramVec
}

func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	m := &EngineMetrics{
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthbridge",
			Subsystem: "appointments",
			Name:      "transitions_total",
			Help:      "Total appointment state transitions attempted",
		}, []string{"action", "outcome"}),
		fanoutTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthbridge",
			Subsystem: "notifications",
			Name:      "fanout_total",
			Help:      "Total notification fan-out attempts",
		}, []string{"category", "status"}),
		fanoutLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "healthbridge",
			Subsystem: "notifications",
			Name:      "fanout_latency_seconds",
			Help:      "Latency of notification fan-out per transition",
			Buckets:   prometheus.DefBuckets,
		}, []string{"category"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.transitionsTotal, m.fanoutTotal, m.fanoutLatency)
	return m
}

func (m *EngineMetrics) ObserveTransition(action, outcome string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(action, outcome).Inc()
}

func (m *EngineMetrics) ObserveFanout(category, status string) {
	if m == nil {
		return
	}
	m.fanoutTotal.WithLabelValues(category, status).Inc()
}

func (m *EngineMetrics) ObserveFanoutLatency(category string, seconds float64) {
	if m == nil {
		return
	}
	m.fanoutLatency.WithLabelValues(category).Observe(seconds)
}
