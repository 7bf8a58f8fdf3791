package session

import (
	"context"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/flori92/floservice-messaging/internal/feed"
)

// Registry hands out one Manager per user session and owns their feed
// watchers. Managers live for the process lifetime; Close releases every
// watcher subscription.
type Registry struct {
	mu       sync.Mutex
	managers map[string]*Manager
	cancels  map[string]context.CancelFunc

	snapshotDir string
	presence    PresenceSetter
	counter     UnreadCounter
	feed        *feed.Feed
	restore     bool
	logger      *zap.Logger
}

// NewRegistry constructs a Registry. snapshotDir may be empty to disable
// session continuity.
func NewRegistry(snapshotDir string, presence PresenceSetter, counter UnreadCounter, messageFeed *feed.Feed, restoreOnLoad bool, logger *zap.Logger) *Registry {
	return &Registry{
		managers:    make(map[string]*Manager),
		cancels:     make(map[string]context.CancelFunc),
		snapshotDir: snapshotDir,
		presence:    presence,
		counter:     counter,
		feed:        messageFeed,
		restore:     restoreOnLoad,
		logger:      logger,
	}
}

// Get returns the user's manager, creating it on first use. A new manager
// restores its persisted windows when the restore flag is on, recomputes its
// badge, and starts watching the live feed.
func (r *Registry) Get(ctx context.Context, userID string) *Manager {
	r.mu.Lock()
	if m, ok := r.managers[userID]; ok {
		r.mu.Unlock()
		return m
	}

	var store Store
	if r.snapshotDir != "" {
		store = NewFileStore(filepath.Join(r.snapshotDir, userID+".json"))
	}
	m := NewManager(userID, r.presence, r.counter, store, r.restore, r.logger)
	r.managers[userID] = m

	watchCtx, cancel := context.WithCancel(context.Background())
	r.cancels[userID] = cancel
	r.mu.Unlock()

	if err := m.Restore(ctx); err != nil {
		r.logger.Warn("session restore failed", zap.String("user_id", userID), zap.Error(err))
	}
	if err := m.RefreshUnread(ctx); err != nil {
		r.logger.Warn("unread refresh failed", zap.String("user_id", userID), zap.Error(err))
	}
	if r.feed != nil {
		go m.Watch(watchCtx, r.feed)
	}
	return m
}

// Close cancels every feed watcher.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cancel := range r.cancels {
		cancel()
	}
	r.cancels = make(map[string]context.CancelFunc)
}
