package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"groupchat-service/internal/middleware"
	"groupchat-service/internal/observability"
	"groupchat-service/internal/telemetry"
)

// Auditor records successful structural mutations.
type Auditor interface {
	Emit(ctx context.Context, level, text, requestID string, userID *int64, chatID int)
}

func emitAudit(c *gin.Context, audit Auditor, text string, chatID int) {
	if audit == nil {
		return
	}
	audit.Emit(c.Request.Context(), telemetry.LevelInfo, text, requestIDFromContext(c), userIDFromContext(c), chatID)
}

// requestIDFromContext returns the id set by middleware.RequestLogger. Without it the
// caller supplied id is used, or one is minted on first use.
func requestIDFromContext(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDKey); id != "" {
		return id
	}
	id := observability.RequestIDFromRequest(c.Request)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(middleware.RequestIDKey, id)
	return id
}

// userIDFromContext returns the authenticated caller, or nil on unauthenticated routes.
// Client supplied identity headers are never trusted.
func userIDFromContext(c *gin.Context) *int64 {
	userID := c.GetInt("userID")
	if userID == 0 {
		return nil
	}
	id := int64(userID)
	return &id
}
