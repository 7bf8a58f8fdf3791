package models

import (
	"database/sql"
	"time"
)

// Conversation pairs two participants for message exchange. The participant
// columns hold the unordered pair in sorted order so the unique index enforces
// at most one conversation per pair; InitiatorID records who made first contact.
type Conversation struct {
	ID                    int64          `db:"id" json:"id"`
	ParticipantA          string         `db:"participant_a" json:"participant_a"`
	ParticipantB          string         `db:"participant_b" json:"participant_b"`
	InitiatorID           string         `db:"initiator_id" json:"initiator_id"`
	ExternalCounterpartID sql.NullString `db:"external_counterpart_id" json:"external_counterpart_id,omitempty"`
	LastMessage           string         `db:"last_message" json:"last_message,omitempty"`
	LastMessageAt         sql.NullTime   `db:"last_message_at" json:"last_message_at,omitempty"`
	CreatedAt             time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at" json:"updated_at"`
}

// Counterpart returns the other participant from userID's perspective.
func (c Conversation) Counterpart(userID string) string {
	if c.ParticipantA == userID {
		return c.ParticipantB
	}
	return c.ParticipantA
}

// HasParticipant reports whether userID belongs to the conversation.
func (c Conversation) HasParticipant(userID string) bool {
	return c.ParticipantA == userID || c.ParticipantB == userID
}

// ConversationSummary is the API-friendly directory entry for one conversation.
type ConversationSummary struct {
	ConversationID    int64      `db:"id" json:"conversation_id"`
	CounterpartID     string     `json:"counterpart_id"`
	CounterpartName   string     `json:"counterpart_name,omitempty"`
	CounterpartAvatar string     `json:"counterpart_avatar,omitempty"`
	LastMessage       string     `json:"last_message,omitempty"`
	LastMessageAt     *time.Time `json:"last_message_at,omitempty"`
	UnreadCount       int        `json:"unread_count"`
}

// Profile is a locally mirrored user directory entry. Presence fields are the
// durable copy; Redis holds the fast path.
type Profile struct {
	UserID      string       `db:"user_id" json:"user_id"`
	DisplayName string       `db:"display_name" json:"display_name"`
	AvatarURL   string       `db:"avatar_url" json:"avatar_url,omitempty"`
	Online      bool         `db:"online" json:"online"`
	LastSeen    sql.NullTime `db:"last_seen" json:"last_seen,omitempty"`
}
