// Package middleware provides the gin middleware shared by every quotebox
// route: request IDs, access logging, panic recovery and request deadlines.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/quotebox/internal/platform/logging"
)

const (
	// HeaderRequestID is the header name for request ID.
	HeaderRequestID = "X-Request-ID"

	// ContextKeyRequestID is the context key for storing the request ID.
	ContextKeyRequestID = "request_id"

	// maxRequestIDLength caps client supplied IDs before they reach the logs.
	maxRequestIDLength = 128
)

// RequestID returns middleware that extracts or generates a request ID.
// The request ID is:
//   - Taken from the X-Request-ID header when present and sane
//   - Generated as a new UUID v4 otherwise
//   - Echoed in the response headers
//   - Added to the context logger for structured logging
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}

		c.Set(ContextKeyRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), id))

		c.Next()
	}
}

// GetRequestID extracts the request ID from the gin.Context.
// Returns empty string if not set.
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}
