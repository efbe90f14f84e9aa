package lifecycle

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BhavyaPagadala/urbix/internal/report"
)

// RegisterRoutes mounts report endpoints under /api/reports on the given router.
func RegisterRoutes(r chi.Router, engine *Engine) {
	r.Route("/api/reports", func(r chi.Router) {
		r.Get("/", handleList(engine))
		r.Post("/", handleCreate(engine))
		r.Post("/draft", handleDraft(engine))
		r.Get("/{id}", handleGet(engine))
		r.Delete("/{id}", handleDelete(engine))
		r.Post("/{id}/status", handleStatus(engine))
	})
}

// FilterFromQuery reads listing filters from URL query parameters.
func FilterFromQuery(r *http.Request) report.Filter {
	q := r.URL.Query()
	return report.Filter{
		Locality:  q.Get("locality"),
		Sentiment: q.Get("sentiment"),
		Category:  q.Get("category"),
		Status:    q.Get("status"),
		Reporter:  q.Get("reporter"),
	}
}

func handleList(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, engine.Store().List(FilterFromQuery(r)))
	}
}

type createRequest struct {
	Submission
	Reporter string `json:"reporter"`
}

func handleCreate(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		rep, err := engine.Create(r.Context(), req.Submission, req.Reporter)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, rep)
	}
}

type draftRequest struct {
	Description string `json:"description"`
	Image       string `json:"image"`
}

func handleDraft(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req draftRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.Description == "" && req.Image == "" {
			http.Error(w, "description or image is required", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, engine.Draft(r.Context(), req.Description, req.Image))
	}
}

func handleGet(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := engine.Store().Get(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rep)
	}
}

func handleDelete(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := engine.Delete(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("actor")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type statusRequest struct {
	Status string `json:"status"`
	Actor  string `json:"actor"`
}

func handleStatus(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		rep, err := engine.Transition(r.Context(), chi.URLParam(r, "id"), req.Status, req.Actor)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rep)
	}
}

// writeError maps lifecycle and store errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidSubmission), errors.Is(err, report.ErrUnknownStatus):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, report.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, report.ErrTerminalState):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
