package httpmw

import "net/http"

// CORS permits any origin, method, and header, with credentials
// disabled (no Allow-Credentials header is ever set). Preflight OPTIONS
// requests are answered here without touching the rest of the pipeline,
// so error responses and preflights alike carry the policy.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "*")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
