package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotebox/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotebox/internal/platform/logging"
)

// Recovery returns middleware that recovers from panics.
// On panic, it logs the value with the stack at ERROR level and answers
// 500 with the standard error envelope. Apply it first so it covers every
// other middleware.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			ctx := c.Request.Context()

			logging.FromContext(ctx).ErrorContext(ctx, "panic recovered",
				slog.Any("error", r),
				slog.String("stack", string(debug.Stack())),
				slog.String("path", c.Request.URL.Path),
				slog.String("method", c.Request.Method),
			)

			dto.AbortWithErrorCode(c, dto.ErrorCodeInternal, "an internal error occurred")
		}()

		c.Next()
	}
}
