package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/esg-report-api/internal/service"
)

// Metrics feeds request counts and latencies into Prometheus, labelled by route template.
// Routes listed in skipPaths, such as the scrape endpoint, are not recorded.
func Metrics(metricsSvc *service.MetricsService, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if _, ignored := skip[route]; ignored {
			return
		}
		if route == "" {
			route = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
