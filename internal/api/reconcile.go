package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// reconcileManifest is the per-dataset service manifest served to
// reconciliation clients.
type reconcileManifest struct {
	Name            string   `json:"name"`
	IdentifierSpace string   `json:"identifierSpace"`
	SchemaSpace     string   `json:"schemaSpace"`
	Versions        []string `json:"versions"`
}

// reconcile serves the reconciliation manifest for a dataset. The
// dataset must exist in the index; unknown datasets surface the
// engine's own error.
func (a *API) reconcile(w http.ResponseWriter, r *http.Request) error {
	dataset := chi.URLParam(r, "dataset")

	// probe the dataset so unknown names produce the engine's 404
	if _, err := a.Index.Search(r.Context(), dataset, ""); err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, reconcileManifest{
		Name:            a.Meta.Title + " (" + dataset + ")",
		IdentifierSpace: "https://lunarway.github.io/yente/ns/" + dataset,
		SchemaSpace:     "https://lunarway.github.io/yente/schema",
		Versions:        []string{"0.2"},
	})
	return nil
}
