package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studysync-api/internal/service"
)

// UnmatchedRoute labels requests that hit no registered route, so 404 probes and raw download
// tokens never become label values.
const UnmatchedRoute = "unmatched"

// Metrics returns middleware that records request latency per route template and, for handlers
// that call SetCacheHit, whether the response came from the schedule cache.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = UnmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
		if hit, recorded := CacheHit(c); recorded {
			metricsSvc.ObserveCachedResponse(route, hit)
		}
	}
}
