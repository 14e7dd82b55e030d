package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/lunarway/yente/internal/index"
	"github.com/lunarway/yente/internal/probe"
)

// fakeIndex scripts the index client per call.
type fakeIndex struct {
	searchFn     func(ctx context.Context, dataset, query string) (json.RawMessage, error)
	statementsFn func(ctx context.Context, params url.Values) (json.RawMessage, error)
	pingErr      error
}

func (f *fakeIndex) Search(ctx context.Context, dataset, query string) (json.RawMessage, error) {
	if f.searchFn == nil {
		return json.RawMessage(`{}`), nil
	}
	return f.searchFn(ctx, dataset, query)
}

func (f *fakeIndex) Statements(ctx context.Context, params url.Values) (json.RawMessage, error) {
	if f.statementsFn == nil {
		return json.RawMessage(`{}`), nil
	}
	return f.statementsFn(ctx, params)
}

func (f *fakeIndex) Ping(ctx context.Context) error { return f.pingErr }

func newTestRouter(a *API) http.Handler {
	r := chi.NewRouter()
	a.RegisterRoutes(r)
	return r
}

func TestSearch_Passthrough(t *testing.T) {
	idx := &fakeIndex{
		searchFn: func(ctx context.Context, dataset, query string) (json.RawMessage, error) {
			if dataset != "sanctions" {
				t.Errorf("dataset = %q, want sanctions", dataset)
			}
			if query != "john" {
				t.Errorf("query = %q, want john", query)
			}
			return json.RawMessage(`{"results":[{"id":"Q1"}]}`), nil
		},
	}
	h := newTestRouter(New(idx, Meta{Title: "yente"}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/search/sanctions?q=john", http.NoBody))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != `{"results":[{"id":"Q1"}]}` {
		t.Fatalf("body = %q", got)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Content-Type = %q", ct)
	}
}

func TestSearch_EngineFaultSurfaces(t *testing.T) {
	idx := &fakeIndex{
		searchFn: func(ctx context.Context, dataset, query string) (json.RawMessage, error) {
			return nil, &index.APIError{StatusCode: http.StatusNotFound, Message: "no such dataset"}
		},
	}
	h := newTestRouter(New(idx, Meta{}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/search/nothere", http.NoBody))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body not JSON: %v", err)
	}
	if body["detail"] != "no such dataset" {
		t.Fatalf("detail = %q", body["detail"])
	}
}

func TestStatements_ForwardsParams(t *testing.T) {
	idx := &fakeIndex{
		statementsFn: func(ctx context.Context, params url.Values) (json.RawMessage, error) {
			if got := params.Get("dataset"); got != "peps" {
				t.Errorf("dataset param = %q, want peps", got)
			}
			return json.RawMessage(`{"statements":[]}`), nil
		},
	}
	h := newTestRouter(New(idx, Meta{}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/statements?dataset=peps", http.NoBody))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestReconcile_Manifest(t *testing.T) {
	h := newTestRouter(New(&fakeIndex{}, Meta{Title: "yente"}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/reconcile/sanctions", http.NoBody))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var m reconcileManifest
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("manifest not JSON: %v", err)
	}
	if !strings.Contains(m.Name, "sanctions") {
		t.Fatalf("manifest name = %q, want dataset included", m.Name)
	}
	if len(m.Versions) == 0 {
		t.Fatal("manifest has no versions")
	}
}

func TestReconcile_UnknownDataset(t *testing.T) {
	idx := &fakeIndex{
		searchFn: func(ctx context.Context, dataset, query string) (json.RawMessage, error) {
			return nil, &index.APIError{StatusCode: http.StatusNotFound, Message: "unknown"}
		},
	}
	h := newTestRouter(New(idx, Meta{}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/reconcile/bogus", http.NoBody))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	a := New(&fakeIndex{}, Meta{})
	a.Healthy = probe.Static(true, "")
	h := newTestRouter(a)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", http.NoBody))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestReadyz_Failing(t *testing.T) {
	a := New(&fakeIndex{}, Meta{})
	a.Ready = probe.Static(false, "index unreachable")
	h := newTestRouter(a)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/readyz", http.NoBody))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "index unreachable") {
		t.Fatalf("body = %q, want reason included", rec.Body.String())
	}
}

func TestVersion_Metadata(t *testing.T) {
	a := New(&fakeIndex{}, Meta{
		Title:   "yente",
		Version: "1.2.3",
		Contact: Contact{Email: "ops@example.com"},
	})
	h := newTestRouter(a)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/version", http.NoBody))

	var body struct {
		Title   string `json:"title"`
		Version string `json:"version"`
		Contact struct {
			Email string `json:"email"`
		} `json:"contact"`
		Build struct {
			GoVersion string `json:"go_version"`
		} `json:"build"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body not JSON: %v", err)
	}
	if body.Title != "yente" || body.Version != "1.2.3" {
		t.Fatalf("meta = %+v", body)
	}
	if body.Contact.Email != "ops@example.com" {
		t.Fatalf("contact email = %q", body.Contact.Email)
	}
}
