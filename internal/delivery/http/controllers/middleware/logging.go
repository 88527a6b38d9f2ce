package middleware

import (
	"fmt"
	"net/http"
	"time"

	"LiqLearns/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDCtx    = "request_id"
)

// LoggingMiddleware tags every request with an id and logs it once finished.
// Client errors go to warn, server errors to error.
func LoggingMiddleware(log logger.Log) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDCtx, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		path := c.Request.URL.Path
		if rawQuery := c.Request.URL.RawQuery; rawQuery != "" {
			path = fmt.Sprintf("%s?%s", path, rawQuery)
		}
		status := c.Writer.Status()
		reqLog := log.With(
			"request_id", requestID,
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		)

		msg := fmt.Sprintf("%s %s", c.Request.Method, path)
		switch {
		case status >= http.StatusInternalServerError:
			reqLog.Error(msg)
		case status >= http.StatusBadRequest:
			reqLog.Warn(msg)
		default:
			reqLog.Info(msg)
		}

		for _, ginErr := range c.Errors {
			reqLog.ErrorErr("HTTP request error", ginErr.Err, "path", path)
		}
	}
}
