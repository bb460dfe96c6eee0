package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/tagihan-dashboard/internal/metrics"
)

// Metrics records the latency of every request under its route pattern.
// Unmatched routes are recorded as "unmatched".
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
