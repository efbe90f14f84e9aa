package similar

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/BhavyaPagadala/urbix/internal/report"
)

const defaultLimit = 5

// RegisterRoutes mounts the similar-report lookup. idx may be nil when no
// embedding provider is configured.
func RegisterRoutes(r chi.Router, idx *Index, store *report.Store) {
	r.Get("/api/similar/{id}", func(w http.ResponseWriter, req *http.Request) {
		if idx == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "similar-report search is not configured"})
			return
		}

		rep, err := store.Get(chi.URLParam(req, "id"))
		if errors.Is(err, report.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}

		limit := defaultLimit
		if v := req.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
				return
			}
			limit = n
		}

		// Ask for extra so reports deleted since indexing can be skipped.
		stale := max(0, idx.Count()-len(store.List(report.Filter{})))
		matches, err := idx.Similar(req.Context(), rep, limit+stale)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		out := make([]Match, 0, limit)
		for _, m := range matches {
			if _, err := store.Get(m.ID); err != nil {
				continue
			}
			out = append(out, m)
			if len(out) == limit {
				break
			}
		}
		writeJSON(w, http.StatusOK, out)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
