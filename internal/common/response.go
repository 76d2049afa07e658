package common

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the envelope every failure returns
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSON writes any payload with the given status
func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// WriteError maps a core error onto the {error, details} envelope
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, StatusCode(err), ErrorResponse{
		Error:   ErrorKey(err),
		Details: err.Error(),
	})
}
