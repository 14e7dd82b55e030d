package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// search proxies a query against one dataset to the index.
func (a *API) search(w http.ResponseWriter, r *http.Request) error {
	dataset := chi.URLParam(r, "dataset")
	query := r.URL.Query().Get("q")

	results, err := a.Index.Search(r.Context(), dataset, query)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(results)
	return err
}
