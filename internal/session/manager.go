package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/flori92/floservice-messaging/internal/feed"
	"github.com/flori92/floservice-messaging/internal/models"
)

// Window is one open chat window, keyed by counterpart identity. Client-only
// state: never persisted beyond the session snapshot.
type Window struct {
	CounterpartID string `json:"counterpart_id"`
	Name          string `json:"name"`
	Online        bool   `json:"online"`
	X             int    `json:"x"`
	Y             int    `json:"y"`
	Expanded      bool   `json:"expanded"`
}

// Cascading layout constants for newly opened windows.
const (
	baseX = 24
	baseY = 24
	stepX = 320
	stepY = 16
)

// PresenceSetter is the slice of the presence tracker the manager drives.
type PresenceSetter interface {
	SetOnline(ctx context.Context, userID string, online bool) error
}

// UnreadCounter recomputes the badge aggregate from the message store.
type UnreadCounter interface {
	CountUnread(ctx context.Context, userID string) (int, error)
}

// Manager is the state container for open chat windows of one user session.
// All mutations go through named actions and are serialized by a single mutex,
// the single-writer discipline the window registry requires. Presence flips
// exactly on the 0->1 and 1->0 open-window transitions.
type Manager struct {
	mu       sync.Mutex
	self     string
	windows  map[string]*Window
	order    []string
	unread   int
	presence PresenceSetter
	counter  UnreadCounter
	store    Store
	restore  bool
	logger   *zap.Logger
}

// NewManager constructs a Manager for the given user. store may be nil when
// session continuity is not wanted; restoreOnLoad gates the re-open-on-start
// path and defaults to off.
func NewManager(self string, presence PresenceSetter, counter UnreadCounter, store Store, restoreOnLoad bool, logger *zap.Logger) *Manager {
	return &Manager{
		self:     self,
		windows:  make(map[string]*Window),
		presence: presence,
		counter:  counter,
		store:    store,
		restore:  restoreOnLoad,
		logger:   logger,
	}
}

// Open opens a chat window for the counterpart, or re-stacks the existing one.
// The open-window count never grows for an already-open counterpart.
func (m *Manager) Open(ctx context.Context, counterpartID, name string, online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if w, ok := m.windows[counterpartID]; ok {
		w.Name = name
		w.Online = online
		m.bump(counterpartID)
		m.snapshot()
		return
	}

	n := len(m.windows)
	m.windows[counterpartID] = &Window{
		CounterpartID: counterpartID,
		Name:          name,
		Online:        online,
		X:             baseX + n*stepX,
		Y:             baseY + n*stepY,
		Expanded:      true,
	}
	m.order = append(m.order, counterpartID)

	if n == 0 {
		m.setOnline(ctx, true)
	}
	m.snapshot()
}

// Close removes the counterpart's window. Emptying the set flips presence
// offline once.
func (m *Manager) Close(ctx context.Context, counterpartID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.windows[counterpartID]; !ok {
		return
	}
	delete(m.windows, counterpartID)
	m.dropFromOrder(counterpartID)

	if len(m.windows) == 0 {
		m.setOnline(ctx, false)
	}
	m.snapshot()
}

// ToggleExpand flips the collapsed/expanded flag. Cosmetic only.
func (m *Manager) ToggleExpand(counterpartID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if w, ok := m.windows[counterpartID]; ok {
		w.Expanded = !w.Expanded
		m.snapshot()
	}
}

// MinimizeAll closes every open window with a single presence-offline
// transition, regardless of how many windows were open.
func (m *Manager) MinimizeAll(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hadOpen := len(m.windows) > 0
	m.windows = make(map[string]*Window)
	m.order = nil

	if hadOpen {
		m.setOnline(ctx, false)
	}
	m.snapshot()
}

// Windows returns the open windows in stacking order.
func (m *Manager) Windows() []Window {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Window, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.windows[id])
	}
	return out
}

// OpenCount reports the number of open windows.
func (m *Manager) OpenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}

// Unread returns the cached badge count.
func (m *Manager) Unread() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unread
}

// RefreshUnread recomputes the badge aggregate from the store, the on-mount
// path of the badge indicator.
func (m *Manager) RefreshUnread(ctx context.Context) error {
	if m.counter == nil {
		return nil
	}
	count, err := m.counter.CountUnread(ctx, m.self)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.unread = count
	m.mu.Unlock()
	return nil
}

// Watch consumes the live feed until ctx is done, bumping the badge for each
// insert addressed to this session's user. The subscription is released on
// every exit path.
func (m *Manager) Watch(ctx context.Context, f *feed.Feed) {
	ch, unsubscribe := f.Subscribe(m.self, 16)
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			m.noteIncoming(msg)
		}
	}
}

// NoteRead drops n messages from the badge after a mark-as-read.
func (m *Manager) NoteRead(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unread -= n
	if m.unread < 0 {
		m.unread = 0
	}
}

// Restore re-opens persisted windows when the restore flag is set. Kept as a
// configuration-gated capability, default off. A non-empty restored set flips
// presence online once.
func (m *Manager) Restore(ctx context.Context) error {
	if !m.restore || m.store == nil {
		return nil
	}

	saved, err := m.store.Load()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	wasEmpty := len(m.windows) == 0
	for i := range saved {
		w := saved[i]
		if _, ok := m.windows[w.CounterpartID]; ok {
			continue
		}
		m.windows[w.CounterpartID] = &w
		m.order = append(m.order, w.CounterpartID)
	}

	if wasEmpty && len(m.windows) > 0 {
		m.setOnline(ctx, true)
	}
	return nil
}

func (m *Manager) noteIncoming(msg models.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg.RecipientID != m.self || msg.Read {
		return
	}
	m.unread++
}

// bump moves an already-open window to the top of the stack and re-cascades
// its position.
func (m *Manager) bump(counterpartID string) {
	m.dropFromOrder(counterpartID)
	m.order = append(m.order, counterpartID)
	n := len(m.order) - 1
	if w, ok := m.windows[counterpartID]; ok {
		w.X = baseX + n*stepX
		w.Y = baseY + n*stepY
	}
}

func (m *Manager) dropFromOrder(counterpartID string) {
	for i, id := range m.order {
		if id == counterpartID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			return
		}
	}
}

// setOnline runs inside the mutex on count transitions only. Presence failures
// degrade rather than block the window action.
func (m *Manager) setOnline(ctx context.Context, online bool) {
	if m.presence == nil {
		return
	}
	if err := m.presence.SetOnline(ctx, m.self, online); err != nil {
		m.logger.Warn("presence transition failed",
			zap.String("user_id", m.self), zap.Bool("online", online), zap.Error(err))
	}
}

// snapshot persists the open set for session continuity. Best effort.
func (m *Manager) snapshot() {
	if m.store == nil {
		return
	}
	windows := make([]Window, 0, len(m.order))
	for _, id := range m.order {
		windows = append(windows, *m.windows[id])
	}
	if err := m.store.Save(windows); err != nil {
		m.logger.Warn("session snapshot failed", zap.Error(err))
	}
}
