package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"groupchat-service/internal/observability"
)

// RequestIDKey is the gin context key holding the id shared by a request's logs and audit records.
const RequestIDKey = "request_id"

// RequestLogger assigns a request id (client supplied or fresh), echoes it in X-Request-ID
// and logs one line per completed request.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		requestID := observability.RequestIDFromRequest(c.Request)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", observability.IPFromRequest(c.Request)),
		}
		if userID := c.GetInt("userID"); userID != 0 {
			fields = append(fields, zap.Int("user_id", userID))
		}
		if status >= 500 {
			logger.Error("http request", fields...)
			return
		}
		logger.Info("http request", fields...)
	}
}
