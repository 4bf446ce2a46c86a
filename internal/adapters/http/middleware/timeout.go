package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotebox/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotebox/internal/platform/logging"
)

// Timeout returns middleware that puts a deadline on the request context.
// Store calls honor it, so a request stuck behind a locked database gives
// up instead of holding a connection. If the deadline passed and the
// handler wrote nothing, a 503 TIMEOUT envelope is sent.
//
// A non-positive timeout disables the middleware.
func Timeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if !errors.Is(ctx.Err(), context.DeadlineExceeded) || c.Writer.Written() {
			return
		}

		logging.FromContext(ctx).WarnContext(ctx, "request timeout",
			slog.String("path", c.Request.URL.Path),
			slog.String("method", c.Request.Method),
			slog.Duration("timeout", timeout),
		)

		dto.AbortWithErrorCode(c, dto.ErrorCodeTimeout, "request timeout exceeded")
	}
}
