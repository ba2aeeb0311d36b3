package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestStoreOpOutcomes(t *testing.T) {
	m := New()
	m.StoreOp("add_intake", nil)
	m.StoreOp("add_intake", nil)
	m.StoreOp("add_intake", errors.New("disk full"))

	if got := testutil.ToFloat64(m.storeOps.WithLabelValues("add_intake", OutcomeOK)); got != 2 {
		t.Errorf("ok count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.storeOps.WithLabelValues("add_intake", OutcomeError)); got != 1 {
		t.Errorf("error count = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.StoreOp("x", nil)
	m.Notification("goal_achieved", OutcomeOK)
	samples, err := m.Snapshot()
	if err != nil || samples != nil {
		t.Errorf("nil Snapshot = %v, %v", samples, err)
	}
}

func TestSnapshotSorted(t *testing.T) {
	m := New()
	m.Notification("progress", OutcomeSkipped)
	m.StoreOp("set_goal", nil)
	m.StoreOp("add_intake", nil)

	samples, err := m.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("got %d samples, want 3", len(samples))
	}
	if samples[0].Name != "sip_notifications_total" {
		t.Errorf("first sample = %s", samples[0].Name)
	}
	if samples[1].Labels["op"] != "add_intake" || samples[2].Labels["op"] != "set_goal" {
		t.Errorf("storage samples out of order: %+v", samples[1:])
	}
}
