package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// ErrClosed is returned by storages after Close.
var ErrClosed = errors.New("state: storage closed")

// Key addresses a session. Sessions are scoped to a user inside a chat.
type Key struct {
	ChatID int64
	UserID int64
}

func (k Key) String() string {
	return strconv.FormatInt(k.ChatID, 10) + ":" + strconv.FormatInt(k.UserID, 10)
}

// Session stores conversation state and temporary data for a user.
type Session struct {
	State State                      `json:"state"`
	Data  map[string]json.RawMessage `json:"data,omitempty"`

	dirty bool
}

// NewSession returns an idle session without data.
func NewSession() *Session {
	return &Session{State: StateIdle, Data: make(map[string]json.RawMessage)}
}

// Is reports whether the session is currently in st.
func (s *Session) Is(st State) bool {
	if s == nil {
		return st == StateIdle
	}
	return s.current() == st
}

func (s *Session) current() State {
	if s.State == "" {
		return StateIdle
	}
	return s.State
}

// SetState moves the session to st.
func (s *Session) SetState(st State) {
	if s.current() == st {
		return
	}
	s.State = st
	s.dirty = true
}

// Reset returns the session to idle and drops every stored value.
func (s *Session) Reset() {
	if s.current() == StateIdle && len(s.Data) == 0 {
		return
	}
	s.State = StateIdle
	s.Data = make(map[string]json.RawMessage)
	s.dirty = true
}

// Put stores v as JSON under key.
func (s *Session) Put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("state: encode %s: %w", key, err)
	}
	if s.Data == nil {
		s.Data = make(map[string]json.RawMessage)
	}
	s.Data[key] = raw
	s.dirty = true
	return nil
}

// Get decodes the value stored under key into dst. It reports false when the key is absent.
func (s *Session) Get(key string, dst any) (bool, error) {
	raw, ok := s.Data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("state: decode %s: %w", key, err)
	}
	return true, nil
}

// Delete removes key from the session.
func (s *Session) Delete(key string) {
	if _, ok := s.Data[key]; !ok {
		return
	}
	delete(s.Data, key)
	s.dirty = true
}

// Dirty reports whether the session changed since it was loaded or saved.
func (s *Session) Dirty() bool {
	return s != nil && s.dirty
}

// Empty reports whether the session carries nothing worth persisting.
func (s *Session) Empty() bool {
	return s.current() == StateIdle && len(s.Data) == 0
}

func encodeSession(s *Session) ([]byte, error) {
	return json.Marshal(s)
}

func decodeSession(raw []byte) (*Session, error) {
	s := NewSession()
	if err := json.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("state: decode session: %w", err)
	}
	if s.Data == nil {
		s.Data = make(map[string]json.RawMessage)
	}
	if s.State == "" {
		s.State = StateIdle
	}
	return s, nil
}

// Storage persists sessions between updates.
type Storage interface {
	// Load returns the stored session or a fresh idle one.
	Load(ctx context.Context, key Key) (*Session, error)
	// Save persists s. Empty sessions are removed instead.
	Save(ctx context.Context, key Key, s *Session) error
	Clear(ctx context.Context, key Key) error
	Close() error
}
