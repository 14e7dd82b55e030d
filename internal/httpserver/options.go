package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lunarway/yente/internal/log"
)

type Options struct {
	Logger log.Logger
	Port   int

	// Routes registers the business routers on the chi router.
	Routes func(chi.Router)

	// OnPanic is invoked for every panic the interceptor recovers.
	OnPanic func()

	// MetricsMW and RateLimitMW slot in optional middleware between the
	// interceptor and the router.
	MetricsMW   func(http.Handler) http.Handler
	RateLimitMW func(http.Handler) http.Handler

	// MaxBodyBytes caps request bodies; 0 uses the default.
	MaxBodyBytes int64
}
