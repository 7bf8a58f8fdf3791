package models

import "time"

// Presence is a user's online flag plus last-seen timestamp. It is mutated
// only by explicit chat-session open/close transitions, never by a heartbeat,
// so an online flag can go stale after a tab kill; last-seen resolves that.
type Presence struct {
	UserID   string    `json:"user_id"`
	Online   bool      `json:"online"`
	LastSeen time.Time `json:"last_seen"`
}
