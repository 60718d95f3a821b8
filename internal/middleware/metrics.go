package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/metrics"
)

// Metrics records request counts and latency per route pattern
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.RecordHTTPRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
