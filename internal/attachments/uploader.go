package attachments

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/flori92/floservice-messaging/internal/fault"
	"github.com/flori92/floservice-messaging/internal/models"
	"github.com/flori92/floservice-messaging/internal/objectstore"
)

// Attachment is the result of a successful upload, classified for the compose
// flow: image payloads render inline, everything else becomes a file payload
// carrying the original name plus URL.
type Attachment struct {
	Kind        models.MessageKind `json:"kind"`
	Name        string             `json:"name"`
	URL         string             `json:"url"`
	ContentType string             `json:"content_type"`
}

// Uploader normalizes binary payloads and data-URL blobs into object-store
// writes. Size ceilings are enforced by the caller before Upload is invoked.
type Uploader struct {
	store  objectstore.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewUploader constructs an Uploader.
func NewUploader(store objectstore.Store, logger *zap.Logger) *Uploader {
	return &Uploader{store: store, logger: logger, now: time.Now}
}

// Upload writes data under folder and returns the classified attachment. On
// failure it returns nil plus a boundary error so the compose flow continues.
func (u *Uploader) Upload(ctx context.Context, originalName string, data []byte, folder string) (*Attachment, error) {
	if len(data) == 0 {
		return nil, fault.Validation("empty file")
	}

	contentType := mimetype.Detect(data).String()
	name := u.objectName(originalName)

	url, err := u.store.Put(ctx, folder, name, data, contentType)
	if err != nil {
		u.logger.Error("attachment upload failed",
			zap.String("name", originalName), zap.Error(err))
		return nil, err
	}

	kind := models.KindFile
	if strings.HasPrefix(contentType, "image/") {
		kind = models.KindImage
	}

	return &Attachment{
		Kind:        kind,
		Name:        originalName,
		URL:         url,
		ContentType: contentType,
	}, nil
}

var dataURLPattern = regexp.MustCompile(`^data:([^;,]+)?(;base64)?,`)

// DecodeDataURL normalizes a data-URL-encoded blob (e.g. a captured image)
// into raw bytes plus a generated file name.
func DecodeDataURL(dataURL string) ([]byte, string, error) {
	match := dataURLPattern.FindStringSubmatch(dataURL)
	if match == nil {
		return nil, "", fault.Validation("not a data URL")
	}

	payload := dataURL[len(match[0]):]
	var data []byte
	if match[2] == ";base64" {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", fault.Validation("malformed base64 payload")
		}
		data = decoded
	} else {
		data = []byte(payload)
	}

	ext := ".bin"
	if match[1] != "" {
		if detected := mimetype.Lookup(match[1]); detected != nil && detected.Extension() != "" {
			ext = detected.Extension()
		}
	}
	return data, "capture" + ext, nil
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// objectName builds a collision-resistant name: time prefix plus sanitized
// original.
func (u *Uploader) objectName(original string) string {
	base := unsafeNameChars.ReplaceAllString(original, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "file"
	}
	return fmt.Sprintf("%d_%s", u.now().UnixNano(), base)
}
