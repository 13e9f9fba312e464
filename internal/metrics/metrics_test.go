package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestOrdersTotalCountsByLabel(t *testing.T) {
	before := testutil.ToFloat64(OrdersTotal.WithLabelValues("buy", "submitted"))
	OrdersTotal.WithLabelValues("buy", "submitted").Inc()

	if got := testutil.ToFloat64(OrdersTotal.WithLabelValues("buy", "submitted")); got != before+1 {
		t.Fatalf("expected %v, got %v", before+1, got)
	}
}

func TestMetricsRegistered(t *testing.T) {
	CyclesTotal.WithLabelValues("ok").Inc()

	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	found := false
	for _, mf := range mfs {
		if mf.GetName() == "cycles_total" {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("cycles_total metric not found")
	}
}
