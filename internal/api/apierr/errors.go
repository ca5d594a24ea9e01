package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/arenagame-go/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeNotFound       = "NOT_FOUND"
	CodeInvalidState   = "INVALID_STATE"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeConflict       = "CONFLICT"
	CodeRateLimited    = "RATE_LIMITED"
	CodeInternalError  = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// Status returns the HTTP status err maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError classifies err by its taxonomy sentinel. The message of a
// domain error is safe to show; anything else is reported as internal.
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch model.Kind(err) {
	case model.ErrNotFound:
		return &httpError{http.StatusNotFound, APIError{CodeNotFound, err.Error()}}
	case model.ErrInvalidState:
		return &httpError{http.StatusConflict, APIError{CodeInvalidState, err.Error()}}
	case model.ErrUnauthorized:
		return &httpError{http.StatusForbidden, APIError{CodeUnauthorized, err.Error()}}
	case model.ErrConflict:
		return &httpError{http.StatusConflict, APIError{CodeConflict, err.Error()}}
	case model.ErrRateLimited:
		return &httpError{http.StatusTooManyRequests, APIError{CodeRateLimited, err.Error()}}
	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
