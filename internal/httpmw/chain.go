package httpmw

import "net/http"

// Chain wraps h with mws, outermost first: a request flows through
// mws[0], then mws[1], and so on before reaching h. Nil entries are
// skipped so callers can leave optional slots empty.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	out := h
	for i := len(mws) - 1; i >= 0; i-- {
		mw := mws[i]
		if mw == nil {
			continue
		}
		out = mw(out)
	}
	return out
}
