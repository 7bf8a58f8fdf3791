package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flori92/floservice-messaging/internal/identity"
	"github.com/flori92/floservice-messaging/internal/presence"
)

// PresenceHandler exposes the presence record of a counterpart.
type PresenceHandler struct {
	tracker   *presence.Tracker
	validator identity.Validator
	logger    *zap.Logger
}

// NewPresenceHandler builds a PresenceHandler.
func NewPresenceHandler(tracker *presence.Tracker, validator identity.Validator, logger *zap.Logger) *PresenceHandler {
	return &PresenceHandler{tracker: tracker, validator: validator, logger: logger}
}

// Get returns the online flag plus a humanized last-seen label.
func (h *PresenceHandler) Get(c *gin.Context) {
	userID := c.Param("user_id")
	if err := h.validator.Validate(userID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	record, err := h.tracker.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":   record.UserID,
		"online":    record.Online,
		"last_seen": record.LastSeen,
		"label":     presence.LastSeenLabel(record.LastSeen, time.Now()),
	})
}
