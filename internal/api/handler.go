package api

import (
	"encoding/json"
	"net/http"

	"github.com/lunarway/yente/internal/index"
	"github.com/lunarway/yente/internal/log"
)

// Handler is an endpoint that reports failure by returning an error
// instead of writing a response.
type Handler func(http.ResponseWriter, *http.Request) error

// errorDetail is the envelope for recognized upstream faults.
type errorDetail struct {
	Detail string `json:"detail"`
}

// handler adapts h into an http.Handler running the fault dispatch.
// Category-specific translation runs first; anything unrecognized falls
// through to the same generic 500 envelope the interceptor's panic
// boundary produces.
func (a *API) handler(h Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		ctx := r.Context()
		L := log.FromContext(ctx)

		if ae, ok := index.AsAPIError(err); ok {
			L.Error(ctx, err, "search api error",
				"status", ae.StatusCode,
				"message", ae.Message,
			)
			a.countError("api")
			writeJSON(w, ae.StatusCode, errorDetail{Detail: ae.Message})
			return
		}

		if te, ok := index.AsTransportError(err); ok {
			L.Error(ctx, err, "index transport error",
				"message", te.Message,
			)
			a.countError("transport")
			writeJSON(w, http.StatusInternalServerError, errorDetail{Detail: te.Message})
			return
		}

		L.Error(ctx, err, "unhandled error during request")
		a.countError("other")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status": "error"}`))
	})
}

func (a *API) countError(category string) {
	if a.OnError != nil {
		a.OnError(category)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
