// Package api exposes clockd's Clock over HTTP/JSON, mirroring the
// embedded scripting binding: set_time_alert_ns, set_timer_ns,
// cancel_timer, cancel_timers, next_time_ns, timer_names, timer_count,
// timestamp[_ms|_us|_ns], utc_now.
package api

import (
	"encoding/json"
	"log"
	"net/http"

	"google.golang.org/grpc/codes"
)

// respondJSON writes payload as a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("error encoding JSON response: %v", err)
	}
}

// errorResponse is the JSON shape returned for every 4xx/5xx response.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// respondError writes a JSON error response with the given HTTP status.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: http.StatusText(status)})
}

// coder is satisfied by pkg/clock.ConfigError, TemporalError, and
// InvariantViolation.
type coder interface {
	Code() codes.Code
}

// respondClockError maps a pkg/clock error to an HTTP status using the
// grpc/codes each one carries. An error that doesn't implement coder
// (should not happen for errors returned by pkg/clock) falls back to 500.
func respondClockError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if c, ok := err.(coder); ok {
		switch c.Code() {
		case codes.InvalidArgument:
			status = http.StatusBadRequest
		case codes.FailedPrecondition:
			status = http.StatusConflict
		case codes.Internal:
			status = http.StatusInternalServerError
		}
	}
	respondError(w, status, err.Error())
}
