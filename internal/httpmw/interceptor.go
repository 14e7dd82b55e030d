package httpmw

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/lunarway/yente/internal/log"
	"github.com/lunarway/yente/internal/xerrors"
)

// responseWriter wraps http.ResponseWriter to capture status and bytes written
type responseWriter struct {
	http.ResponseWriter
	status int
	bytes  int64
	wrote  bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wrote {
		rw.status = code
		rw.wrote = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wrote {
		rw.status = http.StatusOK
		rw.wrote = true
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += int64(n)
	return n, err
}

// support Flush if the underlying writer does.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// support Hijack (websockets, etc).
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("underlying ResponseWriter does not implement http.Hijacker")
	}
	return h.Hijack()
}

// Interceptor is the per-request error boundary. It stamps x-trace-id
// (and x-user-id when derived) on every response, recovers any panic
// from downstream into a 500 {"status":"error"} envelope, and emits
// exactly one log record per request once the status is final. The
// deferred finalization runs on every exit path, including panics and
// client disconnects.
//
// onPanic, if non-nil, is invoked after a recovered panic (used to
// increment the panic counter).
func Interceptor(base log.Logger, onPanic func()) func(http.Handler) http.Handler {
	if base == nil {
		base = log.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc := RequestContextFromContext(r.Context())
			if rc == nil {
				// binder not wired upstream; bind here so the
				// trace-id guarantee still holds
				rc = &RequestContext{
					TraceID:  NewTraceID(),
					UserID:   UserIDFromHeaders(r.Header),
					ClientIP: clientIP(r),
					Start:    time.Now(),
				}
				r = r.WithContext(WithRequestContext(r.Context(), rc))
			}

			// diagnostic headers go on before downstream handling so
			// they are present however the request ends
			w.Header().Set("x-trace-id", rc.TraceID)
			if rc.UserID != "" {
				w.Header().Set("x-user-id", rc.UserID)
			}

			fields := []any{
				"trace_id", rc.TraceID,
				"client_ip", rc.ClientIP,
			}
			if rc.UserID != "" {
				fields = append(fields, "user_id", rc.UserID)
			}
			L := base.With(fields...)

			ctx := log.WithContext(r.Context(), L)
			r = r.WithContext(ctx)

			rw := &responseWriter{ResponseWriter: w}

			defer func() {
				if rec := recover(); rec != nil {
					err, ok := rec.(error)
					if !ok {
						err = xerrors.Newf("%v", rec)
					}
					L.Error(ctx, err, "panic during request",
						"panic_type", fmt.Sprintf("%T", rec),
					)
					if onPanic != nil {
						onPanic()
					}
					if !rw.wrote {
						writeStatusError(rw)
					}
				}

				took := time.Since(rc.Start)
				status := rw.status
				if status == 0 {
					status = http.StatusOK
				}

				L.Info(ctx, r.URL.Path,
					"action", "request",
					"method", r.Method,
					"path", r.URL.Path,
					"query", r.URL.RawQuery,
					"agent", r.Header.Get("User-Agent"),
					"referer", r.Header.Get("Referer"),
					"code", status,
					"took", took.Seconds(),
				)
			}()

			next.ServeHTTP(rw, r)
		})
	}
}

// writeStatusError writes the generic unhandled-fault envelope. Only
// called when nothing has been written yet; a partially-sent response
// cannot have its status rewritten.
func writeStatusError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(`{"status": "error"}`))
}
