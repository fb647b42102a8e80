package middleware

import (
	"time"

	"github.com/JonnyWalker81/moodtrack/backend/internal/logger"
	"github.com/gin-gonic/gin"
)

// RequestIDHeader carries the correlation id in and out of the service
const RequestIDHeader = "X-Request-ID"

// Logger assigns a request id, attaches log to the request context and logs
// every request once it completes
func Logger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		ctx := logger.WithRequestID(c.Request.Context(), c.GetHeader(RequestIDHeader))
		requestID := logger.RequestIDFromContext(ctx)
		ctx = logger.WithLogger(ctx, log)
		c.Request = c.Request.WithContext(ctx)
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		status := c.Writer.Status()
		fields := []logger.Field{
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", status),
			logger.Duration("latency", time.Since(start)),
			logger.String("client_ip", c.ClientIP()),
		}

		// Auth runs later in the chain and enriches the request context
		reqLog := logger.Ctx(c.Request.Context())
		switch {
		case status >= 500:
			reqLog.Error("request completed", fields...)
		case status >= 400:
			reqLog.Warn("request completed", fields...)
		default:
			reqLog.Info("request completed", fields...)
		}
	}
}
