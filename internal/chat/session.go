package chat

import (
	"context"
	"sync"
	"time"

	"github.com/magungh1/exporo-sme-export-assistant/internal/prompts"
)

// maxHistory bounds the transcript kept per session.
const maxHistory = 30

// Session is the per-user conversational context.
type Session struct {
	UserID      string            `json:"userId"`
	State       State             `json:"state"`
	LastCountry string            `json:"lastCountry,omitempty"`
	History     []prompts.Message `json:"history"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func (s *Session) appendMessage(role, content string) {
	s.History = append(s.History, prompts.Message{Role: role, Content: content})
	if over := len(s.History) - maxHistory; over > 0 {
		s.History = append([]prompts.Message(nil), s.History[over:]...)
	}
}

// SessionStore loads and saves sessions. Load returns a fresh idle session
// for unknown users.
type SessionStore interface {
	Load(ctx context.Context, userID string) (Session, error)
	Save(ctx context.Context, s Session) error
}

// MemorySessionStore keeps sessions in process memory.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemorySessionStore returns an empty store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]Session)}
}

func (m *MemorySessionStore) Load(ctx context.Context, userID string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	if !ok {
		return Session{UserID: userID, State: StateIdle}, nil
	}
	s.History = append([]prompts.Message(nil), s.History...)
	return s, nil
}

func (m *MemorySessionStore) Save(ctx context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.History = append([]prompts.Message(nil), s.History...)
	m.sessions[s.UserID] = s
	return nil
}

var _ SessionStore = (*MemorySessionStore)(nil)
