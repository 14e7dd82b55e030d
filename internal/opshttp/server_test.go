package opshttp

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lunarway/yente/internal/probe"
)

func TestProbeHandler_Healthy(t *testing.T) {
	h := probeHandler(probe.Static(true, ""), "ok")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/-/healthy", http.NoBody))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Fatalf("body = %q, want ok", rec.Body.String())
	}
}

func TestProbeHandler_Unhealthy(t *testing.T) {
	h := probeHandler(probe.Static(false, "index down"), "ok")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/-/healthy", http.NoBody))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "index down") {
		t.Fatalf("body = %q, want reason included", rec.Body.String())
	}
}

func TestProbeHandler_NilProbe(t *testing.T) {
	h := probeHandler(nil, "ready")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/-/ready", http.NoBody))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (nil probe = pass)", rec.Code)
	}
}
