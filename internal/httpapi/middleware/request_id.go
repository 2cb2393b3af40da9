package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDKey = "request_id"

// RequestID stamps every request with a correlation id, so a single
// /restart or /kill call can be traced through the access log and any
// supervisor.* log lines it triggers. A caller-supplied X-Request-ID is
// reused only if it parses as a UUID; anything else (missing, malformed,
// spoofed) gets a freshly minted one instead of being trusted verbatim.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}

		c.Header("X-Request-ID", id)
		c.Set(requestIDKey, id)
		c.Next()
	}
}

// GetRequestID returns the current request's correlation id, or "" if
// RequestID was never installed on this route.
func GetRequestID(c *gin.Context) string {
	if id, exists := c.Get(requestIDKey); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
