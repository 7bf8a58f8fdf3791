package models

import (
	"database/sql"
	"time"
)

// MessageKind tags the payload carried by a message.
type MessageKind string

const (
	// KindText is a plain text body.
	KindText MessageKind = "text"
	// KindImage carries an inline image URL.
	KindImage MessageKind = "image"
	// KindFile carries a generic attachment as original name + URL.
	KindFile MessageKind = "file"
)

// Valid reports whether k is one of the known payload tags.
func (k MessageKind) Valid() bool {
	switch k {
	case KindText, KindImage, KindFile:
		return true
	}
	return false
}

// Message is one entry in a conversation. Messages are immutable once created
// except for Read, which transitions false to true only.
type Message struct {
	ID             int64          `db:"id" json:"id"`
	ConversationID int64          `db:"conversation_id" json:"conversation_id"`
	SenderID       string         `db:"sender_id" json:"sender_id"`
	RecipientID    string         `db:"recipient_id" json:"recipient_id"`
	Kind           MessageKind    `db:"kind" json:"kind"`
	Content        string         `db:"content" json:"content"`
	FileName       sql.NullString `db:"file_name" json:"file_name,omitempty"`
	Read           bool           `db:"read" json:"read"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

// Preview returns the short text shown in directory listings.
func (m Message) Preview() string {
	switch m.Kind {
	case KindImage:
		return "[image]"
	case KindFile:
		if m.FileName.Valid {
			return "[file] " + m.FileName.String
		}
		return "[file]"
	default:
		return m.Content
	}
}

// FeedEvent is emitted over the WebSocket feed and the AMQP exchange.
type FeedEvent struct {
	Type    string   `json:"type"`
	Message *Message `json:"message,omitempty"`
}
