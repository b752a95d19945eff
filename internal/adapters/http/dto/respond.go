package dto

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quotebook/internal/domain"
	"github.com/jsamuelsen/quotebook/internal/platform/logging"
)

const (
	// contextKeyTraceID is the gin context key a handler may use to override the trace ID.
	contextKeyTraceID = "trace_id"

	// headerRequestID mirrors middleware.HeaderRequestID without importing middleware.
	headerRequestID = "X-Request-ID"
)

// MapDomainError maps a domain error to an HTTP status code and error response.
// Unknown errors are mapped to 500 Internal Server Error with a generic message.
//
// Sync and post errors wrap the transport error that caused them, so they are
// classified before the categories their cause may belong to.
func MapDomainError(err error) (int, *ErrorResponse) {
	if err == nil {
		return http.StatusOK, nil
	}

	code := ErrorCodeInternal
	message := "an internal error occurred"

	var validationErr *domain.ValidationError

	switch {
	case domain.IsFormat(err):
		code, message = ErrorCodeFormat, err.Error()
	case domain.IsSync(err):
		code, message = ErrorCodeSync, err.Error()
	case domain.IsPost(err):
		code, message = ErrorCodePost, err.Error()
	case domain.IsEmptyStore(err):
		code, message = ErrorCodeEmptyStore, err.Error()
	case errors.As(err, &validationErr):
		resp := NewErrorResponse(ErrorCodeValidation, err.Error())
		if validationErr.Field != "" {
			resp.Error.Details = map[string]string{
				validationErr.Field: validationErr.Message,
			}
		}

		return http.StatusBadRequest, resp
	case domain.IsNotFound(err):
		code, message = ErrorCodeNotFound, err.Error()
	case domain.IsConflict(err):
		code, message = ErrorCodeConflict, err.Error()
	case domain.IsForbidden(err):
		code, message = ErrorCodeForbidden, err.Error()
	case domain.IsUnavailable(err):
		// Dependency details stay in the logs.
		code, message = ErrorCodeUnavailable, "a dependency is temporarily unavailable"
	}

	return HTTPStatusFromCode(code), NewErrorResponse(code, message)
}

// GetTraceID returns the identifier used to correlate an error response with logs.
// An explicit trace_id value in the gin context wins, then the active
// OpenTelemetry span, then the X-Request-ID header.
func GetTraceID(c *gin.Context) string {
	if v, ok := c.Get(contextKeyTraceID); ok {
		if id, ok := v.(string); ok {
			return id
		}

		return ""
	}

	if c.Request == nil {
		return ""
	}

	if sc := trace.SpanFromContext(c.Request.Context()).SpanContext(); sc.HasTraceID() {
		return sc.TraceID().String()
	}

	return c.GetHeader(headerRequestID)
}

// HandleError writes the error response for err and logs server-side failures.
func HandleError(c *gin.Context, err error) {
	status, resp := MapDomainError(err)
	resp.WithTraceID(GetTraceID(c))

	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error("request failed",
			"error", err.Error(),
			"status", status,
			"trace_id", resp.TraceID,
		)
	}

	c.JSON(status, resp)
}

// AbortWithError aborts the handler chain with the error response for err.
func AbortWithError(c *gin.Context, err error) {
	status, resp := MapDomainError(err)
	c.AbortWithStatusJSON(status, resp.WithTraceID(GetTraceID(c)))
}

// RespondWithErrorCode writes an adapter-level error that has no domain counterpart.
func RespondWithErrorCode(c *gin.Context, code, message string) {
	c.JSON(HTTPStatusFromCode(code), NewErrorResponse(code, message).WithTraceID(GetTraceID(c)))
}

// RespondWithBindingError writes a 400 response for a request that failed
// binding or validation, with field details when they are available.
func RespondWithBindingError(c *gin.Context, err error) {
	if fields := ValidationErrors(err); len(fields) > 0 {
		c.JSON(http.StatusBadRequest, NewErrorResponseWithDetails(
			ErrorCodeValidation,
			"request validation failed",
			fields,
		).WithTraceID(GetTraceID(c)))

		return
	}

	RespondWithErrorCode(c, ErrorCodeBadRequest, "malformed request body")
}
