package users

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts account endpoints under /api/users on the given router.
func RegisterRoutes(r chi.Router, dir *Directory) {
	r.Post("/api/users/register", handleRegister(dir))
	r.Post("/api/users/login", handleLogin(dir))
}

func handleRegister(dir *Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var reg Registration
		if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		u, err := dir.Register(r.Context(), reg)
		switch {
		case errors.Is(err, ErrMissingFields), errors.Is(err, ErrUnknownRole):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrAdminRegistration):
			http.Error(w, err.Error(), http.StatusForbidden)
		case errors.Is(err, ErrDuplicateUsername):
			http.Error(w, err.Error(), http.StatusConflict)
		case err != nil:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		default:
			writeJSON(w, http.StatusCreated, u)
		}
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func handleLogin(dir *Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		u, err := dir.Authenticate(r.Context(), req.Username, req.Password)
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			http.Error(w, err.Error(), http.StatusUnauthorized)
		case err != nil:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		default:
			writeJSON(w, http.StatusOK, u)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
