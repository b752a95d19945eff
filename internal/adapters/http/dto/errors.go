// Package dto defines the JSON bodies of the quotebook API and the helpers
// handlers use to write them.
package dto

import "net/http"

// ErrorResponse is the body of every error answer. TraceID ties the answer
// to the server logs.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	TraceID string      `json:"traceId,omitempty"`
}

// ErrorDetail carries a stable code for clients to branch on and a message
// for people. Details maps field names to problems on validation failures.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Error codes returned by the API.
const (
	ErrorCodeBadRequest      = "BAD_REQUEST"
	ErrorCodeValidation      = "VALIDATION_ERROR"
	ErrorCodeFormat          = "FORMAT_ERROR"
	ErrorCodeNotFound        = "NOT_FOUND"
	ErrorCodeConflict        = "CONFLICT"
	ErrorCodeEmptyStore      = "EMPTY_STORE"
	ErrorCodeForbidden       = "FORBIDDEN"
	ErrorCodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	ErrorCodeInternal        = "INTERNAL_ERROR"
	ErrorCodePost            = "POST_ERROR"
	ErrorCodeUnavailable     = "SERVICE_UNAVAILABLE"
	ErrorCodeSync            = "SYNC_ERROR"
	ErrorCodeTimeout         = "TIMEOUT"
)

var statusByCode = map[string]int{
	ErrorCodeBadRequest:      http.StatusBadRequest,
	ErrorCodeValidation:      http.StatusBadRequest,
	ErrorCodeFormat:          http.StatusBadRequest,
	ErrorCodeNotFound:        http.StatusNotFound,
	ErrorCodeConflict:        http.StatusConflict,
	ErrorCodeEmptyStore:      http.StatusConflict,
	ErrorCodeForbidden:       http.StatusForbidden,
	ErrorCodePayloadTooLarge: http.StatusRequestEntityTooLarge,
	ErrorCodeInternal:        http.StatusInternalServerError,
	ErrorCodePost:            http.StatusBadGateway,
	ErrorCodeUnavailable:     http.StatusServiceUnavailable,
	ErrorCodeSync:            http.StatusServiceUnavailable,
	ErrorCodeTimeout:         http.StatusGatewayTimeout,
}

// HTTPStatusFromCode returns the status sent with code. Unknown codes are 500.
func HTTPStatusFromCode(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}

	return http.StatusInternalServerError
}

// NewErrorResponse builds an ErrorResponse without details.
func NewErrorResponse(code, message string) *ErrorResponse {
	return NewErrorResponseWithDetails(code, message, nil)
}

// NewErrorResponseWithDetails builds an ErrorResponse with per-field details.
func NewErrorResponseWithDetails(code, message string, details map[string]string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorDetail{Code: code, Message: message, Details: details}}
}

// WithTraceID sets the trace id and returns e for chaining.
func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}
