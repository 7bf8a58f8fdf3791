package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flori92/floservice-messaging/internal/attachments"
	"github.com/flori92/floservice-messaging/internal/config"
	"github.com/flori92/floservice-messaging/internal/observability"
)

// UploadHandler accepts attachment payloads for the message compose flow.
type UploadHandler struct {
	uploader *attachments.Uploader
	logger   *zap.Logger
}

// NewUploadHandler builds an UploadHandler.
func NewUploadHandler(uploader *attachments.Uploader, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{uploader: uploader, logger: logger}
}

// Upload stores one attachment and returns its classification plus public URL.
// Two payload shapes: a multipart file field, or a JSON body with a data URL
// (e.g. a captured image). The size ceiling is enforced before the object
// store is touched.
func (h *UploadHandler) Upload(c *gin.Context) {
	folder := c.DefaultQuery("folder", "chat")

	var (
		data []byte
		name string
	)

	if file, err := c.FormFile("file"); err == nil {
		if file.Size > config.MaxUploadBytes {
			observability.IncUpload("too_large")
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds the 10MB limit"})
			return
		}
		opened, err := file.Open()
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		defer opened.Close()

		data, err = io.ReadAll(io.LimitReader(opened, config.MaxUploadBytes+1))
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		name = file.Filename
	} else {
		var req struct {
			DataURL string `json:"data_url" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file or data_url is required"})
			return
		}

		decoded, generated, err := attachments.DecodeDataURL(req.DataURL)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		data, name = decoded, generated
	}

	if len(data) > config.MaxUploadBytes {
		observability.IncUpload("too_large")
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds the 10MB limit"})
		return
	}

	attachment, err := h.uploader.Upload(c.Request.Context(), name, data, folder)
	if err != nil {
		observability.IncUpload("error")
		respondError(c, h.logger, err)
		return
	}

	observability.IncUpload("ok")
	c.JSON(http.StatusCreated, attachment)
}
