package api

import (
	"net/http"
)

// statements passes a statement query straight through to the index.
func (a *API) statements(w http.ResponseWriter, r *http.Request) error {
	raw, err := a.Index.Statements(r.Context(), r.URL.Query())
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(raw)
	return err
}
