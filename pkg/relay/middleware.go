package relay

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dotsetgreg/personagen/pkg/logger"
	"github.com/dotsetgreg/personagen/pkg/metrics"
)

const requestIDHeader = "X-Request-ID"

// requestLogger tags every request with an id and logs one line when it
// completes.
func requestLogger(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)

		c.Next()

		elapsed := time.Since(start)
		status := c.Writer.Status()
		m.ObserveHTTP(c.FullPath(), c.Request.Method, status, elapsed)

		fields := map[string]interface{}{
			"request_id":  id,
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      status,
			"duration_ms": elapsed.Milliseconds(),
		}
		if len(c.Errors) > 0 {
			fields["error"] = c.Errors.String()
		}
		switch {
		case status >= 500:
			logger.ErrorCF("relay", "HTTP request", fields)
		case status >= 400:
			logger.WarnCF("relay", "HTTP request", fields)
		default:
			logger.InfoCF("relay", "HTTP request", fields)
		}
	}
}
