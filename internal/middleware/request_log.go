package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"friendship-service/internal/logger"
)

const (
	HeaderRequestID  = "X-Request-ID"
	ContextRequestID = "requestID"
)

// RequestLogger tags each request with an id, puts a request-scoped logger in
// the request context and logs one line when the handler returns.
func RequestLogger(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ContextRequestID, requestID)
		c.Header(HeaderRequestID, requestID)

		reqLogger := base.With("request_id", requestID)
		c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), reqLogger))

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		attrs := []any{
			"method", c.Request.Method,
			"route", route,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"remote_addr", c.ClientIP(),
		}
		if userID, ok := c.Get(ContextUserID); ok {
			attrs = append(attrs, "user_id", userID)
		}
		if len(c.Errors) > 0 {
			reqLogger.Error("request failed", append(attrs, "errors", c.Errors.String())...)
			return
		}
		reqLogger.Info("request", attrs...)
	}
}
