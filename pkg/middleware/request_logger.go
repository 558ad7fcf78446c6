package middleware

import (
	"time"

	"github.com/coursehub/coursehub-api/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger emits one structured line per request. An incoming
// X-Request-ID is kept, otherwise a new one is generated and echoed back.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(RequestIDHeader, rid)

		start := time.Now()
		c.Next()
		dur := time.Since(start)

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		l := logger.L().With(
			"request_id", rid,
			"method", c.Request.Method,
			"path", path,
			"remote_ip", c.ClientIP(),
			"status", c.Writer.Status(),
			"duration_ms", dur.Milliseconds(),
		)
		switch status := c.Writer.Status(); {
		case status >= 500:
			l.Error("request completed", "errors", c.Errors.String())
		case status >= 400:
			l.Warn("request completed")
		default:
			l.Info("request completed", "bytes", c.Writer.Size())
		}
	}
}
