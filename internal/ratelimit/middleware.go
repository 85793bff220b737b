package ratelimit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"groupchat-service/internal/apperrors"
	"groupchat-service/internal/observability"
)

// Middleware rejects requests from users over their message budget. Redis failures
// fail open so a cache outage never blocks chatting.
func (l *Limiter) Middleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		allowed, err := l.Allow(c.Request.Context(), c.GetInt("userID"))
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			observability.IncRateLimited("http")
			code, message := apperrors.Public(apperrors.ErrRateLimited)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": message, "code": code})
			return
		}
		c.Next()
	}
}
