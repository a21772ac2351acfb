package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campusflow/timetable-api/internal/service"
)

// Metrics records duration and status of every request. Unmatched routes
// report their raw path so 404 noise stays visible.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	if metricsSvc == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
