package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CapConcurrentRequests bounds how many HTTP requests may be in flight
// against the supervisor's single-slot state machine at once. Every
// request eventually blocks on the same mutex (start, status, kill,
// restart), so an unbounded burst — e.g. a client retry-looping /status
// during a long settle window — just piles up goroutines waiting on one
// lock. This rejects the overflow with 429 instead of queuing it
// indefinitely.
func CapConcurrentRequests(maxConcurrent int) gin.HandlerFunc {
	slots := make(chan struct{}, maxConcurrent)

	return func(c *gin.Context) {
		select {
		case slots <- struct{}{}:
			defer func() { <-slots }()
			c.Next()
		default:
			render429(c)
		}
	}
}

// render429 follows the same plain-text/JSON negotiation as the rest of
// the HTTP surface, since this middleware runs outside the handlers that
// would otherwise do it.
func render429(c *gin.Context) {
	const msg = "too many concurrent requests"
	if c.Query("format") == "json" {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": msg})
		return
	}
	c.Status(http.StatusTooManyRequests)
	c.Header("Content-Type", "text/plain; charset=utf-8")
	_, _ = c.Writer.WriteString("error: " + msg + "\n")
	c.Abort()
}
