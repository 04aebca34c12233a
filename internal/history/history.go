// Package history keeps per-session conversation context in memory.
// Each session retains a bounded window of recent messages; sessions live
// for the life of the process.
package history

import (
	"sync"
	"time"
)

// Message is one conversation turn.
type Message struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Store holds bounded chat history per session.
type Store struct {
	mu       sync.Mutex
	limit    int
	sessions map[string][]Message
}

// NewStore creates a history store retaining at most limit messages per
// session.
func NewStore(limit int) *Store {
	return &Store{
		limit:    limit,
		sessions: make(map[string][]Message),
	}
}

// Append records a message for the session, evicting the oldest entries
// beyond the retention limit.
func (s *Store) Append(sessionID, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := append(s.sessions[sessionID], Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	if len(msgs) > s.limit {
		msgs = msgs[len(msgs)-s.limit:]
	}
	s.sessions[sessionID] = msgs
}

// Recent returns up to n most recent messages for the session in
// chronological order.
func (s *Store) Recent(sessionID string, n int) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.sessions[sessionID]
	if n > len(msgs) {
		n = len(msgs)
	}
	if n <= 0 {
		return nil
	}
	out := make([]Message, n)
	copy(out, msgs[len(msgs)-n:])
	return out
}
