package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotebook/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotebook/internal/platform/logging"
)

// PanicHook receives a recovered panic value and the stack it unwound from.
type PanicHook func(value any, stack []byte)

// Recovery turns a handler panic into a logged error and a 500 envelope that
// carries the trace id but never the panic value. If the handler had already
// started writing, the response is cut short instead.
//
// It must be the first middleware so that panics in the rest of the chain
// are caught too.
func Recovery(logger *slog.Logger, hooks ...PanicHook) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			value := recover()
			if value == nil {
				return
			}

			stack := debug.Stack()
			for _, hook := range hooks {
				hook(value, stack)
			}

			traceID := dto.GetTraceID(c)

			log := logging.Or(c.Request.Context(), logger)
			if log == nil {
				log = slog.Default()
			}

			log.Error("panic recovered",
				slog.Any("error", value),
				slog.String("method", c.Request.Method),
				slog.String("path", c.Request.URL.Path),
				slog.String("trace_id", traceID),
				slog.String("stack", string(stack)),
			)

			if c.Writer.Written() {
				c.Abort()
				return
			}

			body := dto.NewErrorResponse(dto.ErrorCodeInternal, "an internal error occurred").WithTraceID(traceID)
			c.AbortWithStatusJSON(http.StatusInternalServerError, body)
		}()

		c.Next()
	}
}
