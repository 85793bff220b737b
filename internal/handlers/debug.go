package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"groupchat-service/internal/telemetry"
)

// RealtimeStats exposes the current size of the realtime hub.
type RealtimeStats interface {
	Stats() (connections int, rooms int)
}

// RegisterDebugRoutes mounts operator endpoints. They are off unless debug_routes is set.
func RegisterDebugRoutes(router gin.IRoutes, audit Auditor, realtime RealtimeStats, enabled bool) {
	if !enabled {
		return
	}

	// Publishes a WARN audit record so operators can verify the broker path end to end.
	router.POST("/debug/audit-test", func(c *gin.Context) {
		if audit == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured", "code": "unavailable"})
			return
		}
		requestID := requestIDFromContext(c)
		audit.Emit(c.Request.Context(), telemetry.LevelWarn, "audit test", requestID, userIDFromContext(c), 0)
		c.JSON(http.StatusAccepted, gin.H{"requestId": requestID})
	})

	router.GET("/debug/ws", func(c *gin.Context) {
		connections, rooms := realtime.Stats()
		c.JSON(http.StatusOK, gin.H{"connections": connections, "rooms": rooms})
	})
}
