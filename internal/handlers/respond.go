// Package handlers contains HTTP request handlers for the civic
// reporting API. Handlers parse requests, call services, and return
// JSON responses.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/vozurbana/civic-server/internal/models"
)

// Helper: respond with JSON
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Helper: respond with error
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps the error taxonomy onto HTTP statuses. The
// kind and message always reach the client; ConflictRetry additionally
// signals that an immediate retry is safe.
func respondDomainError(w http.ResponseWriter, err error) {
	kind := models.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case models.KindNotFound:
		status = http.StatusNotFound
	case models.KindInvalidInput:
		status = http.StatusBadRequest
	case models.KindIllegalTransition, models.KindIllegalState:
		status = http.StatusConflict
	case models.KindInsufficientBalance:
		status = http.StatusUnprocessableEntity
	case models.KindConflictRetry:
		w.Header().Set("Retry-After", "0")
		status = http.StatusServiceUnavailable
	}

	message := err.Error()
	if kind == models.KindInternal {
		// Internal details stay in the logs.
		message = "internal error"
	}

	respondJSON(w, status, map[string]string{
		"error": message,
		"kind":  string(kind),
	})
}
