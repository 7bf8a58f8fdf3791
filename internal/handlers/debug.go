package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flori92/floservice-messaging/internal/feed"
	"github.com/flori92/floservice-messaging/internal/telemetry"
	"github.com/flori92/floservice-messaging/internal/ws"
)

// RegisterDebugRoutes wires debug-only endpoints. Disabled outside of
// development unless explicitly turned on.
func RegisterDebugRoutes(router *gin.Engine, emitter *telemetry.AuditEmitter, hub *ws.Hub, messageFeed *feed.Feed, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/audit-test", func(c *gin.Context) {
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}
		emitter.Emit(c.Request.Context(), "INFO", "audit test", requestIDFromContext(c), userIDFromContext(c))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/debug/feed", func(c *gin.Context) {
		resp := gin.H{"subscribers": messageFeed.Subscribers()}
		if userID := c.Query("user_id"); userID != "" {
			resp["connections"] = hub.ConnectionCount(userID)
		}
		c.JSON(http.StatusOK, resp)
	})
}
