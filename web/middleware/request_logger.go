package middleware

import (
	"strings"
	"time"

	"github.com/metabo-ui/metabo-ui/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request id back to the client.
const RequestIDHeader = "X-Request-ID"

var skipLogPaths = []string{
	"/assets/",
	"/favicon.ico",
	"/healthz",
}

// RequestLogger tags every request with an id and logs method, path,
// status and latency once the handler chain has finished.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		path := c.Request.URL.Path
		if shouldSkipLog(path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		line := "%s %s %s %d %s ip=%s"
		args := []any{requestID, c.Request.Method, path, status, time.Since(start).Round(time.Microsecond), c.ClientIP()}
		if status >= 500 {
			logger.Warningf(line, args...)
		} else {
			logger.Debugf(line, args...)
		}
	}
}

func shouldSkipLog(path string) bool {
	for _, skipPath := range skipLogPaths {
		if strings.HasPrefix(path, skipPath) {
			return true
		}
	}
	return false
}
