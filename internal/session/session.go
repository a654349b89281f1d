// Package session keeps in-memory conversation state for the HTTP surface.
// Histories live only for the process lifetime; nothing is persisted across
// restarts.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/uxtriage/uxtriage/internal/agent"
)

// Session is one conversation. The mutex serializes turns: the message
// history is not safe for concurrent mutation, so at most one turn per
// conversation is in flight.
type Session struct {
	ID    uuid.UUID
	mu    sync.Mutex
	state agent.State
}

// RunTurn runs one turn on this conversation, blocking any concurrent turn
// on the same conversation until it completes.
func (s *Session) RunTurn(ctx context.Context, o *agent.Orchestrator, userText string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return o.RunTurn(ctx, &s.state, userText)
}

// Len returns the current history length.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.Messages)
}

// Manager is a process-wide registry of live conversations.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewManager creates an empty registry.
func NewManager() *Manager {
	return &Manager{sessions: make(map[uuid.UUID]*Session)}
}

// Create starts a new conversation with a fresh identifier.
func (m *Manager) Create() *Session {
	s := &Session{ID: uuid.New()}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get returns the conversation with the given id, if it exists.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Count returns the number of live conversations.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
