package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flori92/floservice-messaging/internal/identity"
	"github.com/flori92/floservice-messaging/internal/repositories"
	"github.com/flori92/floservice-messaging/internal/telemetry"
)

// ConversationHandler manages the conversation directory endpoints.
type ConversationHandler struct {
	conversations repositories.ConversationStore
	validator     identity.Validator
	emitter       *telemetry.AuditEmitter
	logger        *zap.Logger
}

// NewConversationHandler builds a ConversationHandler.
func NewConversationHandler(conversations repositories.ConversationStore, validator identity.Validator, emitter *telemetry.AuditEmitter, logger *zap.Logger) *ConversationHandler {
	return &ConversationHandler{
		conversations: conversations,
		validator:     validator,
		emitter:       emitter,
		logger:        logger,
	}
}

// List returns the directory entries for the authenticated user, newest
// activity first. A missing schema yields an empty list, never an error.
func (h *ConversationHandler) List(c *gin.Context) {
	userID := currentUserID(c)

	summaries, err := h.conversations.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": summaries})
}

// Start resolves (or lazily creates) the conversation with a counterpart.
// Repeated calls with the same counterpart return the same id.
func (h *ConversationHandler) Start(c *gin.Context) {
	var req struct {
		CounterpartID string `json:"counterpart_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "counterpart_id is required"})
		return
	}

	userID := currentUserID(c)
	if err := h.validator.Validate(req.CounterpartID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	conv, err := h.conversations.GetOrCreate(c.Request.Context(), userID, req.CounterpartID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.emitter.Emit(c.Request.Context(), "INFO", "conversation opened", requestIDFromContext(c), userIDFromContext(c))
	c.JSON(http.StatusOK, gin.H{"conversation_id": conv.ID})
}
