package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotebook/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotebook/internal/platform/logging"
)

// Timeout gives every request a deadline of d. Handlers see it through the
// request context; a sync or a publish in flight is cancelled with it. If the
// deadline passed and the handler wrote nothing, a 504 envelope is sent.
// Paths in skip keep the caller's context untouched.
func Timeout(d time.Duration, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skipped[c.Request.URL.Path]; ok || d <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if !errors.Is(ctx.Err(), context.DeadlineExceeded) || c.Writer.Written() {
			return
		}

		traceID := dto.GetTraceID(c)

		logging.FromContext(ctx).Warn("request deadline exceeded",
			slog.String("path", c.Request.URL.Path),
			slog.Duration("timeout", d),
			slog.String("trace_id", traceID),
		)

		c.AbortWithStatusJSON(http.StatusGatewayTimeout,
			dto.NewErrorResponse(dto.ErrorCodeTimeout, "request timeout exceeded").WithTraceID(traceID))
	}
}
