package api

import (
	"net/http"

	"github.com/lunarway/yente/internal/version"
)

// healthz: 200 OK when the health probe passes, 503 otherwise (with reason)
func (a *API) healthz(w http.ResponseWriter, r *http.Request) {
	if a.Healthy != nil {
		if err := a.Healthy.Check(r.Context()); err != nil {
			http.Error(w, err.Error()+"\n", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

// readyz: 200 OK when the readiness probe passes, 503 otherwise (with reason)
func (a *API) readyz(w http.ResponseWriter, r *http.Request) {
	if a.Ready != nil {
		if err := a.Ready.Check(r.Context()); err != nil {
			http.Error(w, err.Error()+"\n", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready\n"))
}

// version serves the static service metadata plus build info.
func (a *API) version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Meta
		Build version.Info `json:"build"`
	}{
		Meta:  a.Meta,
		Build: version.Get(),
	})
}
