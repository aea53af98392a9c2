package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestEngineMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewEngineMetrics(reg)

	m.ObserveTransition("approve", "ok")
	m.ObserveTransition("approve", "ok")
	m.ObserveTransition("reject", "conflict")
	m.ObserveFanout("appointment", "sent")
	m.ObserveFanoutLatency("appointment", 0.05)

	if got := testutil.ToFloat64(m.transitionsTotal.WithLabelValues("approve", "ok")); got != 2 {
		t.Errorf("expected 2 approve/ok transitions, got %v", got)
	}
	if got := testutil.ToFloat64(m.transitionsTotal.WithLabelValues("reject", "conflict")); got != 1 {
		t.Errorf("expected 1 reject/conflict transition, got %v", got)
	}
	if got := testutil.ToFloat64(m.fanoutTotal.WithLabelValues("appointment", "sent")); got != 1 {
		t.Errorf("expected 1 fan-out, got %v", got)
	}
}

func TestEngineMetrics_NilReceiverIsSafe(t *testing.T) {
	var m *EngineMetrics
	m.ObserveTransition("approve", "ok")
	m.ObserveFanout("appointment", "sent")
	m.ObserveFanoutLatency("appointment", 0.1)
}
