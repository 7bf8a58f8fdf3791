package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flori92/floservice-messaging/internal/feed"
	"github.com/flori92/floservice-messaging/internal/identity"
	"github.com/flori92/floservice-messaging/internal/models"
	"github.com/flori92/floservice-messaging/internal/observability"
	"github.com/flori92/floservice-messaging/internal/rabbitmq"
	"github.com/flori92/floservice-messaging/internal/repositories"
	"github.com/flori92/floservice-messaging/internal/ws"
)

// MessageHandler manages message endpoints for one conversation.
type MessageHandler struct {
	conversations repositories.ConversationStore
	messages      repositories.MessageStore
	hub           *ws.Hub
	feed          *feed.Feed
	publisher     rabbitmq.Publisher
	validator     identity.Validator
	logger        *zap.Logger
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(conversations repositories.ConversationStore, messages repositories.MessageStore, hub *ws.Hub, messageFeed *feed.Feed, publisher rabbitmq.Publisher, validator identity.Validator, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{
		conversations: conversations,
		messages:      messages,
		hub:           hub,
		feed:          messageFeed,
		publisher:     publisher,
		validator:     validator,
		logger:        logger,
	}
}

// List returns one page of the conversation's messages, oldest first.
func (h *MessageHandler) List(c *gin.Context) {
	conv, ok := h.participantConversation(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	msgs, err := h.messages.List(c.Request.Context(), conv.ID, page, pageSize)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// Send stores a message and fans it out: the sender sees the stored row in the
// response, the recipient's subscribers get it over the live channel.
func (h *MessageHandler) Send(c *gin.Context) {
	conv, ok := h.participantConversation(c)
	if !ok {
		return
	}

	var req struct {
		Kind     string `json:"kind"`
		Content  string `json:"content" binding:"required"`
		FileName string `json:"file_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}

	kind := models.MessageKind(req.Kind)
	if req.Kind == "" {
		kind = models.KindText
	}
	if !kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown message kind"})
		return
	}

	senderID := currentUserID(c)
	recipientID := conv.Counterpart(senderID)
	if err := h.validator.ValidatePair(senderID, recipientID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	msg, err := h.messages.Create(c.Request.Context(), conv.ID, senderID, recipientID, kind, req.Content, req.FileName)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.conversations.Touch(c.Request.Context(), conv.ID, msg.Preview(), msg.CreatedAt); err != nil {
		h.logger.Warn("conversation touch failed",
			zap.Int64("conversation_id", conv.ID), zap.Error(err))
	}

	h.feed.Publish(msg)
	h.hub.Deliver(msg)
	observability.IncMessageSent(string(msg.Kind))

	_ = h.publisher.Publish(c.Request.Context(), "messaging.message.created", models.FeedEvent{
		Type:    "message",
		Message: &msg,
	})

	c.JSON(http.StatusCreated, msg)
}

// MarkRead transitions every unread message addressed to the caller in this
// conversation. Idempotent; a no-op response carries marked=0.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	conv, ok := h.participantConversation(c)
	if !ok {
		return
	}

	userID := currentUserID(c)
	marked, err := h.messages.MarkRead(c.Request.Context(), conv.ID, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"marked": marked})
}

// UnreadCount returns the badge aggregate for the caller.
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	userID := currentUserID(c)

	count, err := h.messages.CountUnread(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread": count})
}

func (h *MessageHandler) participantConversation(c *gin.Context) (models.Conversation, bool) {
	conversationID, err := strconv.ParseInt(c.Param("conversation_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return models.Conversation{}, false
	}

	conv, err := h.conversations.Get(c.Request.Context(), conversationID)
	if err != nil {
		if errors.Is(err, repositories.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return models.Conversation{}, false
		}
		respondError(c, h.logger, err)
		return models.Conversation{}, false
	}

	if !conv.HasParticipant(currentUserID(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
		return models.Conversation{}, false
	}
	return conv, true
}
