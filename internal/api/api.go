// Package api holds the business routers of the service: search,
// reconcile, statements, and admin. Handlers return errors; the Handler
// adapter translates recognized upstream faults into structured JSON
// responses before the interceptor's generic boundary ever sees them.
package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/lunarway/yente/internal/index"
	"github.com/lunarway/yente/internal/probe"
)

// Contact is the service contact block exposed on /version.
type Contact struct {
	Name  string `json:"name,omitempty"`
	URL   string `json:"url,omitempty"`
	Email string `json:"email,omitempty"`
}

// Meta is the static service metadata loaded at startup.
type Meta struct {
	Title   string  `json:"title"`
	Version string  `json:"version"`
	Contact Contact `json:"contact"`
}

type API struct {
	Index   index.Client
	Meta    Meta
	Healthy probe.Probe
	Ready   probe.Probe

	// OnError, if non-nil, is called with the fault category
	// ("api", "transport", "other") for every translated error.
	OnError func(category string)
}

func New(idx index.Client, meta Meta) *API {
	return &API{Index: idx, Meta: meta}
}

// RegisterRoutes mounts all endpoint groups on r.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Method("GET", "/search/{dataset}", a.handler(a.search))
	r.Method("GET", "/reconcile/{dataset}", a.handler(a.reconcile))
	r.Method("GET", "/statements", a.handler(a.statements))

	r.Get("/healthz", a.healthz)
	r.Get("/readyz", a.readyz)
	r.Get("/version", a.version)
}
