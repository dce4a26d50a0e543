// Package store defines the storage interface and implementations.
package store

import (
	"context"
	"errors"

	"github.com/xiaot623/chatrelay/domain"
)

// ErrSessionNotFound is returned when an operation names an unknown session id.
var ErrSessionNotFound = errors.New("session not found")

// Store defines the interface for session and message persistence. A session
// and its message list are created and deleted in lockstep: CreateSession
// initializes an empty message list and DeleteSession removes both.
type Store interface {
	// CreateSession allocates a fresh session id, stores the metadata, and
	// initializes an empty message list for it.
	CreateSession(ctx context.Context, userID, title string) (*domain.Session, error)

	// ListSessions returns the sessions owned by userID ordered by created_at
	// descending. Sessions sharing a timestamp are ordered most recently
	// created first.
	ListSessions(ctx context.Context, userID string) ([]domain.Session, error)

	// GetMessages returns the message list for a session. The slice is empty
	// but non-nil when the session has no messages yet.
	GetMessages(ctx context.Context, sessionID string) ([]domain.Message, error)

	// SaveMessages replaces the stored message list wholesale. Last write
	// wins; there is no merge with prior content.
	SaveMessages(ctx context.Context, sessionID string, messages []domain.Message) error

	// RenameSession updates the session title and returns the updated record.
	RenameSession(ctx context.Context, sessionID, title string) (*domain.Session, error)

	// DeleteSession removes the session record and its message list together.
	DeleteSession(ctx context.Context, sessionID string) error

	// Lifecycle
	Close() error
}
