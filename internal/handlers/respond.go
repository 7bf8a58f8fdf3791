package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flori92/floservice-messaging/internal/fault"
)

// respondError maps boundary errors onto HTTP responses. Raw detail is logged,
// never shown: clients get one generic friendly message per kind and retry by
// re-initiating the action.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	kind := fault.KindOf(err)
	logger.Error("request failed",
		zap.String("route", c.FullPath()),
		zap.String("kind", kind.String()),
		zap.Error(err))

	switch kind {
	case fault.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
	case fault.KindUnauthorized:
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
	case fault.KindNotAvailable:
		// Deployment/migration timing, not a user error. The client shows a
		// feature-disabled state.
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "messaging unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
	}
}
