package state

import (
	"context"
	"sync"
)

// MemoryStorage keeps encoded sessions in a map. Handlers never share a *Session:
// every Load decodes a private copy, so concurrent updates behave like Redis.
type MemoryStorage struct {
	mu       sync.RWMutex
	sessions map[Key][]byte
	closed   bool
}

// NewMemoryStorage constructs an in-memory Storage for tests and development.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{sessions: make(map[Key][]byte)}
}

// Load returns the session for key, or a default idle session.
func (m *MemoryStorage) Load(_ context.Context, key Key) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	raw, ok := m.sessions[key]
	if !ok {
		return NewSession(), nil
	}
	return decodeSession(raw)
}

// Save stores s, or removes the entry when s is empty.
func (m *MemoryStorage) Save(_ context.Context, key Key, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if s == nil || s.Empty() {
		delete(m.sessions, key)
		if s != nil {
			s.dirty = false
		}
		return nil
	}
	raw, err := encodeSession(s)
	if err != nil {
		return err
	}
	m.sessions[key] = raw
	s.dirty = false
	return nil
}

// Clear removes the entire session for key.
func (m *MemoryStorage) Clear(_ context.Context, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.sessions, key)
	return nil
}

// Len returns the number of stored sessions.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close drops all sessions. Further calls fail with ErrClosed.
func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.sessions = nil
	return nil
}
