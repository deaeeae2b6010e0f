package middleware

import (
	"strconv"
	"time"

	"timeswap/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records request counts and latency per path group.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := metrics.NormalizePath(c.Request.URL.Path)
		status := strconv.Itoa(c.Writer.Status())
		metrics.RequestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		metrics.RequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
