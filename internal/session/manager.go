package session

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("session not found")

// Manager indexes live sessions by connection id.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	onClose  func(*Session)
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// SetCloseHook registers a callback run after a session is removed.
func (m *Manager) SetCloseHook(hook func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onClose = hook
}

// Open allocates a session for a new connection.
func (m *Manager) Open() *Session {
	s := newSession(uuid.NewString())
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return s
}

func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Close removes the session and discards its buffer and scene.
func (m *Manager) Close(sessionID string) error {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	hook := m.onClose
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	s.discard()
	if hook != nil {
		hook(s)
	}
	return nil
}

func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// List returns a snapshot of every live session ordered by connect time.
func (m *Manager) List() []Info {
	m.mu.RLock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.mu.RUnlock()

	out := make([]Info, 0, len(all))
	for _, s := range all {
		out = append(out, s.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ConnectedAt.Before(out[j].ConnectedAt) })
	return out
}
