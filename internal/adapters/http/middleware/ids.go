// Package middleware holds the gin middleware chain of the quote API.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/quotebook/internal/platform/logging"
)

// Headers carrying request identifiers.
const (
	// HeaderRequestID identifies a single HTTP exchange.
	HeaderRequestID = "X-Request-ID"

	// HeaderCorrelationID identifies a chain of exchanges across services.
	HeaderCorrelationID = "X-Correlation-ID"
)

// Keys under which the identifiers are stored in the gin context.
const (
	ContextKeyRequestID     = "request_id"
	ContextKeyCorrelationID = "correlation_id"
)

// maxIDLength bounds caller-supplied identifiers. Longer or non-printable
// values are replaced with a fresh UUID.
const maxIDLength = 128

type idKey int

const (
	requestIDKey idKey = iota
	correlationIDKey
)

// idKind describes one identifier header.
type idKind struct {
	header string
	ginKey string
	ctxKey idKey
	logKey string
}

var (
	requestIDKind = idKind{
		header: HeaderRequestID,
		ginKey: ContextKeyRequestID,
		ctxKey: requestIDKey,
		logKey: "request_id",
	}
	correlationIDKind = idKind{
		header: HeaderCorrelationID,
		ginKey: ContextKeyCorrelationID,
		ctxKey: correlationIDKey,
		logKey: "correlation_id",
	}
)

// RequestID adopts the caller's X-Request-ID or generates one. The id is
// echoed in the response, attached to the request logger, and stored in the
// request context where the outbound client picks it up.
func RequestID() gin.HandlerFunc {
	return requestIDKind.middleware()
}

// CorrelationID does for X-Correlation-ID what RequestID does for X-Request-ID.
func CorrelationID() gin.HandlerFunc {
	return correlationIDKind.middleware()
}

func (k idKind) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(k.header)
		if !usableID(id) {
			id = uuid.NewString()
		}

		c.Set(k.ginKey, id)
		c.Header(k.header, id)

		ctx := context.WithValue(c.Request.Context(), k.ctxKey, id)
		c.Request = c.Request.WithContext(logging.WithAttr(ctx, k.logKey, id))

		c.Next()
	}
}

func usableID(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}

	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}

	return true
}

// GetRequestID returns the request id set by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}

// GetCorrelationID returns the correlation id set by CorrelationID, or "".
func GetCorrelationID(c *gin.Context) string {
	return c.GetString(ContextKeyCorrelationID)
}

// RequestIDFromContext returns the request id carried by ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	return idFrom(ctx, requestIDKey)
}

// CorrelationIDFromContext returns the correlation id carried by ctx, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	return idFrom(ctx, correlationIDKey)
}

// ContextWithRequestID returns ctx carrying id as its request id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// ContextWithCorrelationID returns ctx carrying id as its correlation id.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

func idFrom(ctx context.Context, key idKey) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(key).(string)

	return id
}
