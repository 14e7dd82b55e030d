package httpmw

import "net/http"

// MaxBody caps the request body at the given byte count. A handler
// reading past the cap gets *http.MaxBytesError and the connection
// is closed after the response.
func MaxBody(bytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, bytes)
			next.ServeHTTP(w, r)
		})
	}
}
