package httpmw

import (
	"context"
	"encoding/hex"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestContext is the per-request ambient state: a fresh trace id, the
// advisory user id (if any), the peer address, and the request start
// time. It lives in the request's context.Context, so its lifetime is
// structurally bound to one request and concurrent requests can never
// observe each other's values.
type RequestContext struct {
	TraceID  string
	UserID   string
	ClientIP string
	Start    time.Time
}

type requestCtxKey struct{}

// WithRequestContext stores rc in ctx.
func WithRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	if rc == nil {
		return ctx
	}
	return context.WithValue(ctx, requestCtxKey{}, rc)
}

// RequestContextFromContext returns the bound RequestContext, or nil if
// the binder did not run (e.g. preflight requests answered by CORS).
func RequestContextFromContext(ctx context.Context) *RequestContext {
	rc, _ := ctx.Value(requestCtxKey{}).(*RequestContext)
	return rc
}

// BindRequestContext derives the per-request context and binds it before
// downstream handling. The trace id is freshly random per request, never
// taken from or influenced by request content.
func BindRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc := &RequestContext{
			TraceID:  NewTraceID(),
			UserID:   UserIDFromHeaders(r.Header),
			ClientIP: clientIP(r),
			Start:    time.Now(),
		}
		next.ServeHTTP(w, r.WithContext(WithRequestContext(r.Context(), rc)))
	})
}

// NewTraceID returns a random 128-bit id as 32 lowercase hex chars.
func NewTraceID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// clientIP is the immediate peer address (host only); forwarded headers
// are deliberately not consulted at this layer.
func clientIP(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "127.0.0.1"
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port (e.g. unix sockets in tests)
		return r.RemoteAddr
	}
	return host
}
