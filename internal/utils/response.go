package utils

import (
	"encoding/json"
	"net/http"
)

// Payload is the envelope of every JSON response.
type Payload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSONResponse sends payload with the given status.
func JSONResponse(w http.ResponseWriter, status int, payload Payload) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// ErrorResponse sends a failure payload carrying only a message.
func ErrorResponse(w http.ResponseWriter, status int, message string) {
	JSONResponse(w, status, Payload{Success: false, Message: message})
}

// SuccessResponse sends a 200 payload.
func SuccessResponse(w http.ResponseWriter, message string, data any) {
	JSONResponse(w, http.StatusOK, Payload{Success: true, Message: message, Data: data})
}
