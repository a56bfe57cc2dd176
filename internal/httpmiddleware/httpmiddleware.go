// Package httpmiddleware carries the cross-cutting gin middlewares: request
// IDs, access logging with metrics, and panic recovery.
package httpmiddleware

import (
	"net/http"
	"strconv"
	"time"

	"log/slog"

	"github.com/XaidenLabs/myreliq/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestID propagates an inbound request ID or mints one, and echoes it on
// the response so clients can correlate logs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(requestIDHeader, reqID)
		c.Header(requestIDHeader, reqID)
		c.Next()
	}
}

// Logger emits one access log line per request and feeds the request
// metrics. Health probes are logged at debug so they don't drown the log.
func Logger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		// Route template, not the raw URL: keeps metric cardinality bounded.
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		reqID := c.GetString(requestIDHeader)

		level := slog.LevelInfo
		if path == "/healthz" || path == "/readyz" {
			level = slog.LevelDebug
		}
		logger.Log(c.Request.Context(), level, "request",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", latency),
			slog.String("client_ip", c.ClientIP()),
			slog.String("request_id", reqID),
		)

		statusLabel := strconv.Itoa(status)
		metrics.RequestCount.WithLabelValues(c.Request.Method, path, statusLabel).Inc()
		metrics.RequestDuration.WithLabelValues(c.Request.Method, path, statusLabel).Observe(latency.Seconds())
	}
}

// Recovery turns a handler panic into a 500 instead of tearing down the
// connection, and logs the panic value with the request ID.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic",
					slog.Any("error", err),
					slog.String("path", c.Request.URL.Path),
					slog.String("request_id", c.GetString(requestIDHeader)),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			}
		}()
		c.Next()
	}
}
