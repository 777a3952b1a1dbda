package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/biv3k224/ecommerce/internal/domain"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeServiceError translates domain errors into HTTP statuses. Anything
// unanticipated becomes a generic 500 so internals never leak.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrDuplicateName),
		errors.Is(err, domain.ErrDuplicateUsername),
		errors.Is(err, domain.ErrDuplicateEmail):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
	default:
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

// pageParams reads page and size query parameters with sane defaults and caps.
func pageParams(r *http.Request) (page, size int) {
	page = 0
	size = 10

	if raw := r.URL.Query().Get("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			page = v
		}
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			size = v
		}
	}
	if size > 100 {
		size = 100
	}
	return page, size
}
