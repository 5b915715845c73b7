package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"friendship-service/internal/observability"
)

// Metrics records count and latency per route template. Scrapes are not recorded.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		observability.RecordHTTPRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
