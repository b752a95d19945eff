package acl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/quotebook/internal/adapters/clients"
	"github.com/jsamuelsen/quotebook/internal/domain"
)

// RemoteError is an error body returned by the quote source. Three shapes are
// understood: {"error": {"code", "message", "details"}}, a flat
// {"code", "message"}, and an RFC 7807 problem with "title" and "detail".
type RemoteError struct {
	Nested struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Title   string `json:"title,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// GetCode returns the first error code present.
func (e *RemoteError) GetCode() string {
	return firstNonEmpty(e.Nested.Code, e.Code, e.Title)
}

// GetMessage returns the first human-readable message present.
func (e *RemoteError) GetMessage() string {
	return firstNonEmpty(e.Nested.Message, e.Message, e.Detail)
}

// FieldErrors returns per-field validation messages, if any were sent.
func (e *RemoteError) FieldErrors() map[string]string {
	return e.Nested.Details
}

// ParseErrorResponse decodes body as a RemoteError. It returns nil when the
// body is missing, is not JSON, or carries neither a code nor a message.
func ParseErrorResponse(body io.Reader) *RemoteError {
	if body == nil {
		return nil
	}

	var remote RemoteError
	if json.NewDecoder(body).Decode(&remote) != nil {
		return nil
	}

	if remote.GetCode() == "" && remote.GetMessage() == "" {
		return nil
	}

	return &remote
}

// MapHTTPError converts the outcome of a call to the quote source into a
// domain error. clientErr takes precedence over resp; a 2xx resp maps to nil.
// entityID is only used for 404 answers.
func MapHTTPError(resp *http.Response, clientErr error, serviceName, operation, entityID string) error {
	switch {
	case clientErr != nil:
		return transportError(clientErr, serviceName, operation)
	case resp == nil:
		return domain.NewUnavailableError(serviceName, "no response received")
	case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
		return nil
	}

	var remote *RemoteError
	if resp.Body != nil {
		remote = ParseErrorResponse(resp.Body)
	}

	return statusError(resp.StatusCode, remote, serviceName, operation, entityID)
}

func transportError(err error, serviceName, operation string) error {
	var reason string

	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		reason = "circuit breaker open during " + operation
	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		reason = "max retries exceeded during " + operation
	default:
		reason = fmt.Sprintf("%s failed: %v", operation, err)
	}

	return domain.NewUnavailableError(serviceName, reason)
}

// statusMessages are used when the remote did not explain itself.
var statusMessages = map[int]string{
	http.StatusBadRequest:         "invalid request",
	http.StatusUnauthorized:       "authentication required",
	http.StatusForbidden:          "access denied",
	http.StatusNotFound:           "resource not found",
	http.StatusConflict:           "resource conflict",
	http.StatusTooManyRequests:    "rate limit exceeded",
	http.StatusServiceUnavailable: "service temporarily unavailable",
}

func statusError(status int, remote *RemoteError, serviceName, operation, entityID string) error {
	message, ok := statusMessages[status]
	if !ok {
		message = fmt.Sprintf("%s failed with status %d", operation, status)
	}

	if remote != nil && remote.GetMessage() != "" {
		message = remote.GetMessage()
	}

	switch {
	case status == http.StatusNotFound:
		return domain.NewNotFoundError(serviceName, entityID)
	case status == http.StatusConflict:
		return domain.NewConflictError(serviceName, message)
	case status == http.StatusUnauthorized:
		return domain.NewForbiddenError(operation, statusMessages[status])
	case status == http.StatusForbidden:
		return domain.NewForbiddenError(operation, message)
	case status == http.StatusTooManyRequests:
		return domain.NewUnavailableError(serviceName, statusMessages[status])
	case status >= http.StatusInternalServerError:
		return domain.NewUnavailableError(serviceName, message)
	}

	// Any other 4xx is the caller's fault. Report the first field error when
	// the remote listed them.
	if remote != nil {
		for field, msg := range remote.FieldErrors() {
			return domain.NewValidationError(field, msg)
		}
	}

	return domain.NewValidationError("", message)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
