package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// maxErrorMessageLength bounds messages returned to clients.
const maxErrorMessageLength = 200

// writeJSON encodes body as-is, without the response envelope.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondJSON sends a success envelope wrapping data
func respondJSON(w http.ResponseWriter, status int, data any) {
	respondJSONMessage(w, status, "", data)
}

// respondJSONMessage sends a success envelope with an optional message
func respondJSONMessage(w http.ResponseWriter, status int, message string, data any) {
	response := map[string]any{
		"success":   true,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if message != "" {
		response["message"] = message
	}
	if data != nil {
		response["data"] = data
	}
	writeJSON(w, status, response)
}

// sanitizeErrorMessage truncates messages so internal detail does not leak to clients
func sanitizeErrorMessage(message string) string {
	if len(message) > maxErrorMessageLength {
		return message[:maxErrorMessageLength] + "..."
	}
	return message
}

// respondJSONError sends an error JSON response with sanitized error messages
func respondJSONError(w http.ResponseWriter, status int, errorType, message string) {
	writeJSON(w, status, map[string]any{
		"success":   false,
		"error":     errorType,
		"message":   sanitizeErrorMessage(message),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
