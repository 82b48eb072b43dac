package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Response is the envelope for every API response. Handlers set either
// Errors or Data, never both.
type Response struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Errors    []string  `json:"errors,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// WriteJSON writes resp with the given status code.
func WriteJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// WriteOK writes a 200 envelope carrying data.
func WriteOK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Response{
		Timestamp: time.Now().UTC(),
		Message:   "OK",
		Data:      data,
	})
}

// WriteError writes a standardised JSON error envelope with a single error.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, Response{
		Timestamp: time.Now().UTC(),
		Message:   http.StatusText(status),
		Errors:    []string{msg},
	})
}

// Health answers liveness checks with the standard envelope.
func Health(w http.ResponseWriter, r *http.Request) {
	WriteOK(w, map[string]string{"status": "ok"})
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path))
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusMethodNotAllowed, fmt.Sprintf("method %s is not allowed on %s", r.Method, r.URL.Path))
}
