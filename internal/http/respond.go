// Package http exposes the tracker over a JSON API.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeDomainError maps the engine's typed errors onto HTTP statuses.
// Anything unrecognized is a 500 and gets logged with its cause.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case core.IsValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case core.IsNotFoundError(err):
		writeError(w, http.StatusNotFound, err.Error())
	case core.IsCycleError(err):
		writeError(w, http.StatusConflict, err.Error())
	case core.IsCrossAccountError(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Unhandled error",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
