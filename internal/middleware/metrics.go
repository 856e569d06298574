package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"travel-review-service/internal/metrics"
)

// Metrics records request count, latency and in-flight gauge. The route
// label is the registered template so path parameters do not explode the
// label space.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.IncrementInFlight()
		defer m.DecrementInFlight()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
