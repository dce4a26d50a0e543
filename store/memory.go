package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xiaot623/chatrelay/domain"
)

// MemoryStore implements Store with process-local maps. One coarse lock
// guards both maps so a session and its message list never diverge. All
// state is lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*memorySession
	messages map[string][]domain.Message
	nextSeq  uint64
}

// memorySession carries the insertion sequence used to break listing ties
// between sessions created within the same timestamp tick.
type memorySession struct {
	domain.Session
	seq uint64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*memorySession),
		messages: make(map[string][]domain.Message),
	}
}

// CreateSession allocates a fresh uuid and initializes an empty message list.
func (s *MemoryStore) CreateSession(ctx context.Context, userID, title string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := &memorySession{
		Session: domain.Session{
			ID:        uuid.New().String(),
			UserID:    userID,
			Title:     title,
			CreatedAt: time.Now().UTC(),
		},
		seq: s.nextSeq,
	}
	s.nextSeq++

	s.sessions[session.ID] = session
	s.messages[session.ID] = []domain.Message{}

	out := session.Session
	return &out, nil
}

// ListSessions returns userID's sessions newest first, most recently created
// first on equal timestamps.
func (s *MemoryStore) ListSessions(ctx context.Context, userID string) ([]domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*memorySession, 0)
	for _, sess := range s.sessions {
		if sess.UserID == userID {
			matched = append(matched, sess)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].seq > matched[j].seq
	})

	out := make([]domain.Session, len(matched))
	for i, sess := range matched {
		out[i] = sess.Session
	}
	return out, nil
}

// GetMessages returns the message list for a session.
func (s *MemoryStore) GetMessages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs, ok := s.messages[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// SaveMessages replaces the stored message list wholesale.
func (s *MemoryStore) SaveMessages(ctx context.Context, sessionID string, messages []domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}

	stored := make([]domain.Message, len(messages))
	copy(stored, messages)
	s.messages[sessionID] = stored
	return nil
}

// RenameSession updates the session title in place.
func (s *MemoryStore) RenameSession(ctx context.Context, sessionID, title string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	sess.Title = title
	out := sess.Session
	return &out, nil
}

// DeleteSession removes the session record and its message list together.
func (s *MemoryStore) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}

	delete(s.sessions, sessionID)
	delete(s.messages, sessionID)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
