package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"solana-wallet-dashboard/internal/portfolio"
	"solana-wallet-dashboard/internal/reconcile"
)

// errorResponse is the JSON body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Headers are gone; nothing left to do for the client.
		return
	}
}

func writeError(w http.ResponseWriter, status int, format string, args ...interface{}) {
	writeJSON(w, status, errorResponse{Error: fmt.Sprintf(format, args...)})
}

// statusForError maps domain errors to HTTP status codes: invalid input is
// the caller's fault, upstream failure is the data source's, everything
// else is ours.
func statusForError(err error) int {
	switch {
	case errors.Is(err, reconcile.ErrInvalidAddress), errors.Is(err, portfolio.ErrInvalidAddress):
		return http.StatusBadRequest
	case errors.Is(err, reconcile.ErrUpstream), errors.Is(err, portfolio.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// statusClass collapses a status code for the requests-total metric.
func statusClass(status int) string {
	switch {
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
