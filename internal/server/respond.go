package server

import (
	"net/http"

	"github.com/go-chi/render"

	"lead-capture/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

type submitResponse struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	TotalSubmissions int    `json:"total_submissions"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Error: msg})
}

// writeIndented writes v with two-space indentation, the same layout the
// file store uses on disk.
func writeIndented(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return store.EncodeIndented(w, v)
}
