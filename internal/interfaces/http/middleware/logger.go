package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"teamsync.backend/pkg/logger"
)

// HTTPRecorder receives one observation per finished request.
type HTTPRecorder interface {
	HTTPRequest(method, route string, status int, duration time.Duration)
}

// LoggerMiddleware logs HTTP requests using the structured logger
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}
		logger.LogRequest(c.Request.Context(), c.Request.Method, path, c.Writer.Status(), time.Since(start), c.ClientIP())
	}
}

// MetricsMiddleware reports request counts and latency by route template, so
// path parameters never become label values.
func MetricsMiddleware(rec HTTPRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		rec.HTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
