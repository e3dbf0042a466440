package httputil

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the uniform error envelope: a human-readable message
// plus an optional field -> detail map.
type ErrorResponse struct {
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// RespondJSON sends a JSON response with the given status code.
// Logs encoding errors to avoid silent failures.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// RespondError sends a JSON error response with the given message and status code.
func RespondError(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, ErrorResponse{Message: message}, statusCode)
}

// RespondErrorWithDetails sends a JSON error response with per-field details.
func RespondErrorWithDetails(w http.ResponseWriter, message string, details map[string]string, statusCode int) {
	RespondJSON(w, ErrorResponse{Message: message, Details: details}, statusCode)
}
