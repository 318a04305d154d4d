package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/itchan-dev/textboard/internal/logger"
)

// UnusedTTL bounds the life of a session whose cookie never came back,
// so cookie-less clients do not pin a session each for the full ttl.
const UnusedTTL = 10 * time.Minute

// Manager owns the live sessions and drops those idle for longer than ttl.
type Manager struct {
	forum     Forum
	ttl       time.Duration
	unusedTTL time.Duration
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(forum Forum, ttl time.Duration) *Manager {
	return &Manager{
		forum:     forum,
		ttl:       ttl,
		unusedTTL: min(ttl, UnusedTTL),
		now:       time.Now,
		sessions:  make(map[string]*Session),
	}
}

// Create starts a session on the board list.
func (m *Manager) Create(ctx context.Context) *Session {
	s := New(uuid.NewString(), m.forum)
	s.Load(ctx)
	s.touch(m.now())

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	logger.Log.Debug("session created", "session", s.id)
	return s
}

// Get returns a live session and marks it as used.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}

	now := m.now()
	if m.expired(s, now) {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		return nil, false
	}
	s.returned.Store(true)
	s.touch(now)
	return s, true
}

func (m *Manager) expired(s *Session, now time.Time) bool {
	if !s.returned.Load() {
		return s.idleSince(now) > m.unusedTTL
	}
	return s.idleSince(now) > m.ttl
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes expired sessions and returns how many were dropped.
func (m *Manager) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if m.expired(s, now) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is canceled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				logger.Log.Info("expired idle sessions", "count", n, "live", m.Len())
			}
		}
	}
}
