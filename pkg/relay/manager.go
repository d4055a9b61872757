package relay

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pagesmith/pagesmith/pkg/snapshot"
)

// Default limits for executor sessions.
const (
	DefaultMaxSessions = 5
	DefaultIdleTimeout = 5 * time.Minute
)

// Session is one isolated executor session. Each session owns its own
// snapshot pipeline memory; nothing is shared between sessions. Calls within
// one session are serialized by the executor, so a session is effectively
// single-writer.
type Session struct {
	// ID is a process-unique identifier, regenerated when history is
	// cleared.
	ID string

	// Name is the caller-chosen session key.
	Name string

	// Pipeline holds this session's snapshot memory.
	Pipeline *snapshot.Pipeline

	// CreatedAt and LastUsedAt track lifecycle for idle cleanup.
	CreatedAt  time.Time
	LastUsedAt time.Time

	// inflight serializes tool calls for this session.
	inflight sync.Mutex
}

// touch updates the last-used stamp.
func (s *Session) touch() {
	s.LastUsedAt = time.Now()
}

// ClearHistory discards the snapshot memory and assigns a fresh session ID,
// as when the driving agent restarts its conversation.
func (s *Session) ClearHistory() {
	s.Pipeline.Reset()
	s.ID = uuid.New().String()
}

// Manager is the registry of active executor sessions.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	snapCfg     snapshot.Config
	maxSessions int
	idleTimeout time.Duration
}

// NewManager creates a session manager producing pipelines with the given
// snapshot configuration.
func NewManager(snapCfg snapshot.Config) *Manager {
	return &Manager{
		sessions:    make(map[string]*Session),
		snapCfg:     snapCfg,
		maxSessions: DefaultMaxSessions,
		idleTimeout: DefaultIdleTimeout,
	}
}

// Start creates a new named session.
func (m *Manager) Start(name string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[name]; exists {
		return nil, fmt.Errorf("session %q already exists", name)
	}
	if len(m.sessions) >= m.maxSessions {
		return nil, fmt.Errorf("maximum number of sessions (%d) reached", m.maxSessions)
	}

	now := time.Now()
	session := &Session{
		ID:         uuid.New().String(),
		Name:       name,
		Pipeline:   snapshot.NewPipeline(m.snapCfg),
		CreatedAt:  now,
		LastUsedAt: now,
	}
	m.sessions[name] = session
	return session, nil
}

// Get retrieves an active session by name.
func (m *Manager) Get(name string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[name]
	if !exists {
		return nil, fmt.Errorf("session %q not found", name)
	}
	return session, nil
}

// Close removes a session, discarding its memory.
func (m *Manager) Close(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[name]; !exists {
		return fmt.Errorf("session %q not found", name)
	}
	delete(m.sessions, name)
	return nil
}

// CloseAll removes every session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = make(map[string]*Session)
}

// HasSessions reports whether any session is active.
func (m *Manager) HasSessions() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions) > 0
}

// List returns metadata about all active sessions.
func (m *Manager) List() []SessionInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(m.sessions))
	for _, s := range m.sessions {
		infos = append(infos, SessionInfo{
			ID:         s.ID,
			Name:       s.Name,
			CreatedAt:  s.CreatedAt,
			LastUsedAt: s.LastUsedAt,
		})
	}
	return infos
}

// CleanupIdle removes sessions idle longer than the configured timeout and
// returns how many were closed.
func (m *Manager) CleanupIdle() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	closed := 0
	for name, s := range m.sessions {
		if now.Sub(s.LastUsedAt) > m.idleTimeout {
			delete(m.sessions, name)
			closed++
		}
	}
	return closed
}

// SetMaxSessions adjusts the session cap.
func (m *Manager) SetMaxSessions(max int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxSessions = max
}

// SetIdleTimeout adjusts the idle cleanup threshold.
func (m *Manager) SetIdleTimeout(timeout time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idleTimeout = timeout
}

// SessionInfo is read-only session metadata.
type SessionInfo struct {
	ID         string
	Name       string
	CreatedAt  time.Time
	LastUsedAt time.Time
}
