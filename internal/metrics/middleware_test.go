package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	dto "github.com/prometheus/client_model/go"
)

func findFamily(t *testing.T, m *ServerMetrics, name string) *dto.MetricFamily {
	t.Helper()
	fams, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, f := range fams {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}

func labelValue(mt *dto.Metric, key string) string {
	for _, l := range mt.GetLabel() {
		if l.GetName() == key {
			return l.GetValue()
		}
	}
	return ""
}

func TestMiddleware_CountsRequests(t *testing.T) {
	m := New()
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/search/x", http.NoBody))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/search/x", http.NoBody))

	fam := findFamily(t, m, "http_requests_total")
	if fam == nil {
		t.Fatal("http_requests_total not gathered")
	}

	var total float64
	for _, mt := range fam.GetMetric() {
		if labelValue(mt, "status") == "404" && labelValue(mt, "method") == "GET" {
			total += mt.GetCounter().GetValue()
		}
	}
	if total != 2 {
		t.Fatalf("counted %v requests, want 2", total)
	}
}

func TestMiddleware_DefaultStatusIs200(t *testing.T) {
	m := New()
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// no explicit WriteHeader
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", http.NoBody))

	fam := findFamily(t, m, "http_requests_total")
	if fam == nil {
		t.Fatal("http_requests_total not gathered")
	}
	for _, mt := range fam.GetMetric() {
		if labelValue(mt, "status") != "200" {
			t.Fatalf("status label = %q, want 200", labelValue(mt, "status"))
		}
	}
}

func TestCounters(t *testing.T) {
	m := New()
	m.IncHTTPPanic()
	m.IncUpstreamError("transport")
	m.IncUpstreamError("transport")
	m.IncRateLimitDenied()

	if fam := findFamily(t, m, "http_panic_total"); fam == nil ||
		fam.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Fatal("http_panic_total != 1")
	}

	fam := findFamily(t, m, "upstream_errors_total")
	if fam == nil {
		t.Fatal("upstream_errors_total not gathered")
	}
	var got float64
	for _, mt := range fam.GetMetric() {
		if labelValue(mt, "category") == "transport" {
			got = mt.GetCounter().GetValue()
		}
	}
	if got != 2 {
		t.Fatalf("upstream_errors_total{category=transport} = %v, want 2", got)
	}
}

func TestMetricsHandler_Serves(t *testing.T) {
	m := New()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", http.NoBody))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Fatal("empty metrics exposition")
	}
}
