package session

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flori92/floservice-messaging/internal/feed"
	"github.com/flori92/floservice-messaging/internal/models"
)

type presenceRecorder struct {
	mu    sync.Mutex
	calls []bool
}

func (p *presenceRecorder) SetOnline(_ context.Context, _ string, online bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, online)
	return nil
}

func (p *presenceRecorder) transitions() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]bool(nil), p.calls...)
}

func newTestManager(presence PresenceSetter, store Store, restore bool) *Manager {
	return NewManager("tg-1", presence, nil, store, restore, zap.NewNop())
}

func TestOpenDeduplicatesWindows(t *testing.T) {
	rec := &presenceRecorder{}
	m := newTestManager(rec, nil, false)
	ctx := context.Background()

	m.Open(ctx, "tg-2", "Alice", true)
	m.Open(ctx, "tg-2", "Alice", true)

	assert.Equal(t, 1, m.OpenCount())
	assert.Equal(t, []bool{true}, rec.transitions())
}

func TestOpenCascadesPositions(t *testing.T) {
	m := newTestManager(&presenceRecorder{}, nil, false)
	ctx := context.Background()

	m.Open(ctx, "tg-2", "Alice", true)
	m.Open(ctx, "tg-3", "Bob", false)

	windows := m.Windows()
	require.Len(t, windows, 2)
	assert.Equal(t, baseX, windows[0].X)
	assert.Equal(t, baseX+stepX, windows[1].X)
}

func TestReopenBumpsToTopOfStack(t *testing.T) {
	m := newTestManager(&presenceRecorder{}, nil, false)
	ctx := context.Background()

	m.Open(ctx, "tg-2", "Alice", true)
	m.Open(ctx, "tg-3", "Bob", false)
	m.Open(ctx, "tg-2", "Alice", true)

	windows := m.Windows()
	require.Len(t, windows, 2)
	assert.Equal(t, "tg-2", windows[1].CounterpartID)
}

func TestCloseLastWindowGoesOfflineOnce(t *testing.T) {
	rec := &presenceRecorder{}
	m := newTestManager(rec, nil, false)
	ctx := context.Background()

	m.Open(ctx, "tg-2", "Alice", true)
	m.Open(ctx, "tg-3", "Bob", false)
	m.Close(ctx, "tg-2")
	m.Close(ctx, "tg-3")

	assert.Equal(t, []bool{true, false}, rec.transitions())
}

func TestCloseUnknownCounterpartIsNoop(t *testing.T) {
	rec := &presenceRecorder{}
	m := newTestManager(rec, nil, false)

	m.Close(context.Background(), "tg-9")

	assert.Equal(t, 0, m.OpenCount())
	assert.Empty(t, rec.transitions())
}

func TestMinimizeAllSinglePresenceTransition(t *testing.T) {
	rec := &presenceRecorder{}
	m := newTestManager(rec, nil, false)
	ctx := context.Background()

	m.Open(ctx, "tg-2", "Alice", true)
	m.Open(ctx, "tg-3", "Bob", false)
	m.Open(ctx, "tg-4", "Carol", true)
	m.MinimizeAll(ctx)

	assert.Equal(t, 0, m.OpenCount())
	assert.Equal(t, []bool{true, false}, rec.transitions())
}

func TestToggleExpand(t *testing.T) {
	m := newTestManager(&presenceRecorder{}, nil, false)
	ctx := context.Background()

	m.Open(ctx, "tg-2", "Alice", true)
	require.True(t, m.Windows()[0].Expanded)

	m.ToggleExpand("tg-2")
	assert.False(t, m.Windows()[0].Expanded)

	m.ToggleExpand("tg-2")
	assert.True(t, m.Windows()[0].Expanded)
}

func TestUnreadBadgeFollowsFeed(t *testing.T) {
	m := newTestManager(&presenceRecorder{}, nil, false)
	f := feed.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Watch(ctx, f)
	}()

	f.Publish(models.Message{ID: 1, RecipientID: "tg-1"})
	f.Publish(models.Message{ID: 2, RecipientID: "tg-1"})
	// Addressed to someone else: must not bump the badge.
	f.Publish(models.Message{ID: 3, RecipientID: "tg-2"})

	assert.Eventually(t, func() bool { return m.Unread() == 2 }, time.Second, 5*time.Millisecond)

	m.NoteRead(2)
	assert.Equal(t, 0, m.Unread())

	m.NoteRead(5)
	assert.Equal(t, 0, m.Unread(), "badge never goes negative")

	cancel()
	<-done
}

func TestSnapshotAndRestoreGatedByFlag(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "session.json"))
	ctx := context.Background()

	m := newTestManager(&presenceRecorder{}, store, false)
	m.Open(ctx, "tg-2", "Alice", true)
	m.Open(ctx, "tg-3", "Bob", false)

	// Restore disabled: a fresh manager stays empty.
	cold := newTestManager(&presenceRecorder{}, store, false)
	require.NoError(t, cold.Restore(ctx))
	assert.Equal(t, 0, cold.OpenCount())

	// Restore enabled: the persisted set comes back and presence flips once.
	rec := &presenceRecorder{}
	warm := newTestManager(rec, store, true)
	require.NoError(t, warm.Restore(ctx))
	assert.Equal(t, 2, warm.OpenCount())
	assert.Equal(t, []bool{true}, rec.transitions())
}

func TestFileStoreMissingFileIsEmptySession(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	windows, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, windows)
}
