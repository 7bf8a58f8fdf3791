package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flori92/floservice-messaging/internal/identity"
	"github.com/flori92/floservice-messaging/internal/observability"
	"github.com/flori92/floservice-messaging/internal/session"
)

// SessionHandler drives the per-user chat window registry: open, close,
// expand/collapse and the badge indicator. Presence transitions happen inside
// the manager, only on window-count edges.
type SessionHandler struct {
	registry  *session.Registry
	validator identity.Validator
	logger    *zap.Logger
}

// NewSessionHandler builds a SessionHandler.
func NewSessionHandler(registry *session.Registry, validator identity.Validator, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{registry: registry, validator: validator, logger: logger}
}

// Windows lists the open chat windows in stacking order.
func (h *SessionHandler) Windows(c *gin.Context) {
	m := h.registry.Get(c.Request.Context(), currentUserID(c))
	c.JSON(http.StatusOK, gin.H{
		"windows": m.Windows(),
		"unread":  m.Unread(),
	})
}

// Open opens (or re-stacks) a window for a counterpart.
func (h *SessionHandler) Open(c *gin.Context) {
	var req struct {
		CounterpartID string `json:"counterpart_id" binding:"required"`
		Name          string `json:"name"`
		Online        bool   `json:"online"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "counterpart_id is required"})
		return
	}
	if err := h.validator.Validate(req.CounterpartID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	m := h.registry.Get(c.Request.Context(), currentUserID(c))
	before := m.OpenCount()
	m.Open(c.Request.Context(), req.CounterpartID, req.Name, req.Online)
	if before == 0 && m.OpenCount() == 1 {
		observability.IncPresenceTransition(true)
	}

	c.JSON(http.StatusOK, gin.H{"windows": m.Windows()})
}

// Close removes a counterpart's window.
func (h *SessionHandler) Close(c *gin.Context) {
	counterpartID := c.Param("counterpart_id")
	m := h.registry.Get(c.Request.Context(), currentUserID(c))
	before := m.OpenCount()
	m.Close(c.Request.Context(), counterpartID)
	if before > 0 && m.OpenCount() == 0 {
		observability.IncPresenceTransition(false)
	}

	c.Status(http.StatusNoContent)
}

// ToggleExpand flips a window between collapsed and expanded.
func (h *SessionHandler) ToggleExpand(c *gin.Context) {
	m := h.registry.Get(c.Request.Context(), currentUserID(c))
	m.ToggleExpand(c.Param("counterpart_id"))
	c.Status(http.StatusNoContent)
}

// MinimizeAll closes every window with a single presence transition.
func (h *SessionHandler) MinimizeAll(c *gin.Context) {
	m := h.registry.Get(c.Request.Context(), currentUserID(c))
	if m.OpenCount() > 0 {
		observability.IncPresenceTransition(false)
	}
	m.MinimizeAll(c.Request.Context())
	c.Status(http.StatusNoContent)
}
