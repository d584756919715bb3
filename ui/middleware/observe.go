package middleware

import (
	"time"

	"gotasks/internal"
	"gotasks/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latency by route pattern
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// RequestLogger logs each request at debug level
func RequestLogger(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("[HTTP] %s %s %d %.2fms", c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), float64(time.Since(start).Nanoseconds())/1e6)
	}
}
