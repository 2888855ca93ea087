package observability_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hk_itinerary/internal/adapters/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record one sample so counters are non-zero
	observability.ObserveHTTP("/test", "GET", 200, 12*time.Millisecond)

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	if !strings.Contains(out, "hkplan_http_requests_total") {
		t.Fatalf("expected hkplan_http_requests_total in output")
	}
}

func TestMetrics_SourceAndItineraryCounters(t *testing.T) {
	reg := observability.InitRegistry()
	observability.ObserveSource("ai_generated", "timeout", 0, 0)
	observability.ObserveSource("offline_curated", "ok", 12, 1)
	observability.ObserveItinerary("partial")

	rr := httptest.NewRecorder()
	observability.MetricsHandler(reg).ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	out := rr.Body.String()
	for _, want := range []string{
		`hkplan_source_fetches_total{outcome="timeout",source="ai_generated"} 1`,
		`hkplan_source_records_total{result="dropped",source="offline_curated"} 1`,
		`hkplan_itineraries_total{status="partial"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in metrics output", want)
		}
	}
}
