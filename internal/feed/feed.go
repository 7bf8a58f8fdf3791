package feed

import (
	"sync"

	"github.com/flori92/floservice-messaging/internal/models"
)

// Feed is an in-process publish/subscribe channel for newly inserted messages,
// filtered by recipient. Each subscriber sees every matching insert exactly
// once for the lifetime of its subscription; a slow subscriber with a full
// buffer loses the event rather than blocking the publisher, matching the
// at-most-once live-channel contract. Missed messages remain retrievable by
// listing the conversation.
type Feed struct {
	mu   sync.RWMutex
	subs map[int]*subscription
	next int
}

type subscription struct {
	userID string
	ch     chan models.Message
}

// New creates an empty feed.
func New() *Feed {
	return &Feed{subs: make(map[int]*subscription)}
}

// Publish delivers msg to every subscriber registered for its recipient.
func (f *Feed) Publish(msg models.Message) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, sub := range f.subs {
		if sub.userID != msg.RecipientID {
			continue
		}
		select {
		case sub.ch <- msg:
		default:
			// Drop when the subscriber is full (non-blocking).
		}
	}
}

// Subscribe returns a channel receiving messages addressed to userID and an
// unsubscribe function. The unsubscribe must run on every consumer exit path
// or the underlying channel leaks.
func (f *Feed) Subscribe(userID string, bufSize int) (<-chan models.Message, func()) {
	ch := make(chan models.Message, bufSize)
	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = &subscription{userID: userID, ch: ch}
	f.mu.Unlock()

	return ch, func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

// Subscribers reports the number of live subscriptions, for metrics.
func (f *Feed) Subscribers() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}
