package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/melohub/melohub-core/internal/connectivity"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest    = "bad_request"
	ErrCodeNotFound      = "not_found"
	ErrCodeInternal      = "internal_error"
	ErrCodeBackendDown   = "backend_unavailable"
	ErrCodeRemoteFailure = "remote_failure"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeConnectivityError maps a coordinator error to an HTTP response.
//
// Remote failures carry the backend's error message verbatim so the UI
// can show the operator what the backend actually said.
func writeConnectivityError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, connectivity.ErrNotFound):
		writeNotFound(w, err.Error())
	case errors.Is(err, connectivity.ErrUnsupported):
		writeBadRequest(w, err.Error())
	case errors.Is(err, connectivity.ErrBackendUnavailable):
		writeError(w, http.StatusServiceUnavailable, ErrCodeBackendDown, "device backend unavailable")
	case errors.Is(err, connectivity.ErrRemoteFailure):
		writeError(w, http.StatusBadGateway, ErrCodeRemoteFailure, err.Error())
	default:
		writeInternalError(w, "operation failed")
	}
}
