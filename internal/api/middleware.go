package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/developer-mesh/gitee-mcp/internal/observability"
)

// RequestLogger middleware logs HTTP requests
func RequestLogger(logger observability.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := map[string]interface{}{
			"client_ip":  c.ClientIP(),
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"method":     c.Request.Method,
			"path":       path,
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
			logger.Warn("HTTP request failed", fields)
			return
		}
		logger.Debug("HTTP request", fields)
	}
}
