package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/hotelstaff/orderfeed/internal/enum"
	"github.com/hotelstaff/orderfeed/internal/metrics"
	"github.com/hotelstaff/orderfeed/internal/service"
	"go.uber.org/zap"
)

// Manager holds at most one active session. Opening a new one closes the
// previous one first, so its late results never reach the new hotel.
type Manager struct {
	backend Backend
	vocabs  map[enum.Domain]enum.Vocabulary
	log     *zap.Logger
	metrics *metrics.Recorder

	mu      sync.Mutex
	active  *Session
	onOpen  []func(*Session)
	closing bool
}

func NewManager(b Backend, vocabs map[enum.Domain]enum.Vocabulary, log *zap.Logger, m *metrics.Recorder) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{backend: b, vocabs: vocabs, log: log, metrics: m}
}

// OnOpen registers fn to run for every new session before it is entered,
// so subscribers see the session's first state change.
func (m *Manager) OnOpen(fn func(*Session)) {
	m.mu.Lock()
	m.onOpen = append(m.onOpen, fn)
	m.mu.Unlock()
}

// Open replaces the active session with a new one for hotel and enters it.
func (m *Manager) Open(hotel string, device service.Device) (*Session, error) {
	m.mu.Lock()
	if m.closing {
		m.mu.Unlock()
		return nil, ErrSessionClosed
	}
	prev := m.active
	s := newSession(m.backend, hotel, device, m.vocabs, m.log, m.metrics)
	m.active = s
	hooks := append(([]func(*Session))(nil), m.onOpen...)
	m.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
	for _, fn := range hooks {
		fn(s)
	}
	s.Enter()
	m.log.Info("session opened", zap.String("session_id", s.ID.String()), zap.String("hotel", hotel))
	return s, nil
}

// Active returns the active session, or nil.
func (m *Manager) Active() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Get returns the active session if its id matches. A token for a replaced
// session is answered with ErrNoSession.
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil || m.active.ID != id {
		return nil, ErrNoSession
	}
	return m.active, nil
}

// Close ends the session with the given id.
func (m *Manager) Close(id uuid.UUID) error {
	m.mu.Lock()
	s := m.active
	if s == nil || s.ID != id {
		m.mu.Unlock()
		return ErrNoSession
	}
	m.active = nil
	m.mu.Unlock()

	s.Close()
	return nil
}

// Shutdown closes the active session and refuses new ones.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	m.closing = true
	s := m.active
	m.active = nil
	m.mu.Unlock()

	if s != nil {
		s.Close()
		s.Wait()
	}
}
