package dispatch

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"axd/internal/logging"
	"axd/internal/metrics"
)

// requestLogMiddleware logs each request once, after the response is
// written, at debug level (§2.1); it also stamps a per-request correlation
// ID onto the context and echoes it back as X-Request-Id, and feeds the
// request's outcome into the metrics registry for /metrics and /status.
func requestLogMiddleware(logger *logging.Logger, m *metrics.RequestMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Writer.Header().Set("X-Request-Id", requestID)
		c.Request = c.Request.WithContext(logging.ContextWithRequestID(c.Request.Context(), requestID))

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		logger.Debug("request",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
		)

		m.RequestsTotal.Inc()
		m.RequestDuration.ObserveDuration(duration)
		if status >= 400 {
			m.ErrorsTotal.Inc()
		}
	}
}

// errorTrapMiddleware recovers panics from handler code and converts them to
// the documented HTTP 500 body, logging the stack trace server-side (§4.1,
// §7 "Unexpected").
func errorTrapMiddleware(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"),
				)
				if !c.Writer.Written() {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "code": 500})
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}

// bodySizeLimit caps the request body, returning a Validation 413-as-400
// style rejection handled by gin.MaxMultipartMemory's sibling: we wrap the
// body reader instead, since most bodies here are small JSON, not multipart.
func bodySizeLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
