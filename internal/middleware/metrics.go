package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quickshop/storefront/pkg/metrics"
)

// Metrics observes per-route request latency. The route template is used as
// the path label so /products/:id stays one series; scrapes of the metrics
// endpoint itself are not recorded.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			// Unmatched route; a label per unknown URL would explode
			// cardinality.
			path = "unmatched"
		}
		if path == "/metrics" {
			return
		}

		metrics.APILatency.
			WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
