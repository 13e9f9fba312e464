package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"reversalbot/internal/metrics"
	"reversalbot/internal/state"
)

func TestStatusReportsLastCycle(t *testing.T) {
	store := state.NewStore()
	store.RecordCycle(state.CycleSummary{RunID: "run-1", Buys: []string{"AAPL"}, Submitted: 1})
	router := Router(store, func() bool { return true })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !body.Running || body.CyclesRun != 1 || body.LastCycle == nil || body.LastCycle.RunID != "run-1" {
		t.Fatalf("unexpected status %+v", body)
	}
}

func TestHealthz(t *testing.T) {
	router := Router(state.NewStore(), func() bool { return false })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Fatalf("unexpected healthz response %d %s", rec.Code, rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.TicksDroppedTotal.Inc()
	router := Router(state.NewStore(), func() bool { return false })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ticks_dropped_total") {
		t.Fatalf("expected metrics output, got %d", rec.Code)
	}
}
