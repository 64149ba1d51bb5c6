package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveSource(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveSource("Codeforces", "ok", 3, 200*time.Millisecond)
	m.ObserveSource("Codeforces", "failed", 0, time.Second)
	m.ObserveSource("CodeChef", "timed_out", 0, 10*time.Second)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("Codeforces", "ok")); got != 1 {
		t.Errorf("Expected 1 ok request, got %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("CodeChef", "timed_out")); got != 1 {
		t.Errorf("Expected 1 timed_out request, got %v", got)
	}
	if got := testutil.ToFloat64(m.contests.WithLabelValues("Codeforces")); got != 0 {
		t.Errorf("Expected gauge to hold last count 0, got %v", got)
	}
	if got := testutil.ToFloat64(m.lastSuccessTS.WithLabelValues("Codeforces")); got <= 0 {
		t.Errorf("Expected last success timestamp to be set, got %v", got)
	}
	if got := testutil.CollectAndCount(m.lastSuccessTS); got != 1 {
		t.Errorf("Expected only one platform with a success timestamp, got %d", got)
	}
}

func TestObserveAggregate(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveAggregate(7, 1500*time.Millisecond)
	if got := testutil.ToFloat64(m.aggregated); got != 7 {
		t.Errorf("Expected 7 aggregated contests, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveSource("AtCoder", "ok", 1, time.Second)
	m.ObserveAggregate(1, time.Second)
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveSource("LeetCode", "ok", 2, time.Second)

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `codewinder_source_requests_total{platform="LeetCode",status="ok"} 1`) {
		t.Errorf("Expected request counter in output, got:\n%s", w.Body.String())
	}
}
