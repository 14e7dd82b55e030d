package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/lunarway/yente/internal/api"
	"github.com/lunarway/yente/internal/index"
	"github.com/lunarway/yente/internal/log"
)

var hexTraceID = regexp.MustCompile(`^[0-9a-f]{32}$`)

type scriptedIndex struct {
	searchErr error
}

func (s *scriptedIndex) Search(ctx context.Context, dataset, query string) (json.RawMessage, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return json.RawMessage(`{"results":[]}`), nil
}

func (s *scriptedIndex) Statements(ctx context.Context, params url.Values) (json.RawMessage, error) {
	return json.RawMessage(`{"statements":[]}`), nil
}

func (s *scriptedIndex) Ping(ctx context.Context) error { return nil }

func newTestHandler(idx index.Client, extra func(chi.Router)) http.Handler {
	a := api.New(idx, api.Meta{Title: "yente-test"})
	return NewHandler(&Options{
		Logger: log.Nop(),
		Routes: func(r chi.Router) {
			a.RegisterRoutes(r)
			if extra != nil {
				extra(r)
			}
		},
	})
}

func TestPipeline_SuccessfulSearch(t *testing.T) {
	h := newTestHandler(&scriptedIndex{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/search/default?q=x", http.NoBody))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("x-trace-id"); !hexTraceID.MatchString(got) {
		t.Fatalf("x-trace-id = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("CORS origin = %q, want *", got)
	}
}

func TestPipeline_RecognizedFaultTranslated(t *testing.T) {
	h := newTestHandler(&scriptedIndex{
		searchErr: &index.APIError{StatusCode: http.StatusNotFound, Message: "not found"},
	}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/search/missing", http.NoBody))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body not JSON: %v", err)
	}
	if body["detail"] != "not found" {
		t.Fatalf("detail = %q", body["detail"])
	}
	if got := rec.Header().Get("x-trace-id"); !hexTraceID.MatchString(got) {
		t.Fatalf("x-trace-id missing on fault response, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatal("CORS headers missing on fault response")
	}
}

func TestPipeline_TransportFaultIs500(t *testing.T) {
	h := newTestHandler(&scriptedIndex{
		searchErr: &index.TransportError{Message: "connection refused"},
	}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/search/default", http.NoBody))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body not JSON: %v", err)
	}
	if body["detail"] != "connection refused" {
		t.Fatalf("detail = %q", body["detail"])
	}
}

func TestPipeline_PanicBecomesGeneric500(t *testing.T) {
	panics := 0
	a := api.New(&scriptedIndex{}, api.Meta{})
	h := NewHandler(&Options{
		Logger:  log.Nop(),
		OnPanic: func() { panics++ },
		Routes: func(r chi.Router) {
			a.RegisterRoutes(r)
			r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
				panic("kaput")
			})
		},
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/boom", http.NoBody))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if got := rec.Body.String(); got != `{"status": "error"}` {
		t.Fatalf("body = %q, want the generic envelope", got)
	}
	if got := rec.Header().Get("x-trace-id"); !hexTraceID.MatchString(got) {
		t.Fatalf("x-trace-id missing on panic response, got %q", got)
	}
	if panics != 1 {
		t.Fatalf("OnPanic called %d times, want 1", panics)
	}
}

func TestPipeline_UnknownRouteStillTraced(t *testing.T) {
	h := newTestHandler(&scriptedIndex{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/nope", http.NoBody))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if got := rec.Header().Get("x-trace-id"); !hexTraceID.MatchString(got) {
		t.Fatalf("x-trace-id missing on 404, got %q", got)
	}
}

func TestPipeline_PreflightAnsweredByCORS(t *testing.T) {
	h := newTestHandler(&scriptedIndex{}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/search/default", http.NoBody)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("CORS origin = %q, want *", got)
	}
}

func TestPipeline_UserIDHeaderRoundTrip(t *testing.T) {
	h := newTestHandler(&scriptedIndex{}, nil)

	req := httptest.NewRequest("GET", "/search/default", http.NoBody)
	req.Header.Set("Authorization", "Bearer John Doe!!")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("x-user-id"); got != "john-doe" {
		t.Fatalf("x-user-id = %q, want john-doe", got)
	}
}
