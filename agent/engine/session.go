package engine

import (
	"errors"
	stdsync "sync"
	"strings"

	contractx "github.com/gtmquest/gtm-advisor/agent/contract"
	reportx "github.com/gtmquest/gtm-advisor/agent/report"
	syncx "github.com/gtmquest/gtm-advisor/agent/sync"
)

var ErrInvalidSession = errors.New("session id is empty")

// Session owns one conversation: its report state, its history, and the
// sync channel observers watch. All mutation happens under mu, turn by
// turn; different sessions share nothing.
type Session struct {
	ID string

	mu      stdsync.Mutex
	state   *reportx.State
	history []contractx.Message
	channel *syncx.Channel
}

func newSession(id string) *Session {
	s := &Session{
		ID:      id,
		state:   reportx.New(),
		channel: syncx.NewChannel(),
	}
	// Seed the channel so a watcher connecting before the first turn still
	// receives a snapshot.
	s.channel.Publish(s.state.Clone())
	return s
}

// Snapshot answers "what is the current full state" with no side effect.
func (s *Session) Snapshot() *reportx.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Channel exposes the session's sync channel for observers.
func (s *Session) Channel() *syncx.Channel {
	return s.channel
}

// Manager keeps per-session isolation: a map guarded by a RWMutex, one
// Session value per id. Turns within a session serialize on the session's
// own lock, so the manager never blocks one session on another.
type Manager struct {
	mu       stdsync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session, 16)}
}

// Session returns the session for id, creating it on first use.
func (m *Manager) Session(id string) (*Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrInvalidSession
	}

	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		return s, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	s = newSession(id)
	m.sessions[id] = s
	return s, nil
}

// Lookup returns an existing session without creating one.
func (m *Manager) Lookup(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}
