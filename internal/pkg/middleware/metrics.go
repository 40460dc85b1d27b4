package middleware

import (
	"strconv"
	"time"

	"vidtube/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware 记录 HTTP 请求指标
func MetricsMiddleware(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		collector.Record(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
