package monitoring

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// MonitoringMiddleware records request metrics and logs every request.
// /metrics and /health are served without being measured.
func MonitoringMiddleware(metrics *Metrics, logger *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/metrics" || strings.HasPrefix(path, "/health") {
			c.Next()
			return
		}

		start := time.Now()
		metrics.InFlight.Inc()
		defer metrics.InFlight.Dec()

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		status := strconv.Itoa(statusCode)
		metrics.RequestDuration.WithLabelValues(c.Request.Method, route, status).Observe(duration.Seconds())
		metrics.RequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()

		logger.RequestLogger(c.Request.Context(), c.Request.Method, path, c.ClientIP(), c.GetHeader("User-Agent"), statusCode, duration)

		for _, err := range c.Errors {
			logger.APIErrorLogger(c.Request.Context(), err.Err, c.Request.Method, path, c.ClientIP(), statusCode)
		}
	}
}

// SecurityMonitoringMiddleware logs requests from known scanner user agents
func SecurityMonitoringMiddleware(logger *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userAgent := c.GetHeader("User-Agent")
		if agent, ok := suspiciousUserAgent(userAgent); ok {
			logger.WarnContext(c.Request.Context(), "Security Event",
				"event", "suspicious_user_agent",
				"scanner", agent,
				"ip", c.ClientIP(),
				"path", c.Request.URL.Path,
			)
		}

		c.Next()
	}
}

var scannerAgents = []string{
	"sqlmap",
	"nmap",
	"masscan",
	"zmap",
	"dirbuster",
	"gobuster",
	"nikto",
	"acunetix",
	"nessus",
}

func suspiciousUserAgent(userAgent string) (string, bool) {
	ua := strings.ToLower(userAgent)
	for _, agent := range scannerAgents {
		if strings.Contains(ua, agent) {
			return agent, true
		}
	}
	return "", false
}
