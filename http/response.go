package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kennelhq/kennel"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// MessageResponse represents a JSON success message
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes the response matching the domain error. Internal
// detail never reaches the body; the full error goes to the log.
func HandleError(w http.ResponseWriter, err error) {
	slog.Error("request error", "error", err)

	switch {
	case errors.Is(err, kennel.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "Dog image not found.")
	case errors.Is(err, kennel.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, "invalid_input", "Invalid input.")
	case errors.Is(err, kennel.ErrDuplicateUsername):
		WriteError(w, http.StatusConflict, "duplicate_username", "Username already exists.")
	case errors.Is(err, kennel.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials.")
	case errors.Is(err, kennel.ErrForbidden):
		WriteError(w, http.StatusForbidden, "forbidden", "You are not authorized to access this image.")
	case errors.Is(err, kennel.ErrInvalidToken):
		WriteError(w, http.StatusForbidden, "invalid_token", "Invalid token.")
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
