package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/xiaot623/chatrelay/domain"
)

// SQLiteStore implements Store using SQLite. It is the optional durable
// backend selected with DATABASE_URL; the service contract is identical to
// MemoryStore, including wholesale message replacement on save.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at dsn and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations. seq (AUTOINCREMENT) carries the insertion
// order used as the listing tie-break; idx keeps each message list ordered.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			seq INTEGER NOT NULL UNIQUE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS messages (
			session_id TEXT NOT NULL,
			idx INTEGER NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			model TEXT,
			PRIMARY KEY (session_id, idx),
			FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateSession allocates a fresh uuid and stores the session row. The
// message list needs no sentinel row; session existence is what GetMessages
// checks.
func (s *SQLiteStore) CreateSession(ctx context.Context, userID, title string) (*domain.Session, error) {
	session := &domain.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, user_id, title, created_at, seq)
		 VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM sessions))`,
		session.ID, session.UserID, session.Title, session.CreatedAt)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// ListSessions returns userID's sessions newest first, most recently created
// first on equal timestamps.
func (s *SQLiteStore) ListSessions(ctx context.Context, userID string) ([]domain.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, user_id, title, created_at FROM sessions
		 WHERE user_id = ? ORDER BY created_at DESC, seq DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []domain.Session{}
	for rows.Next() {
		var sess domain.Session
		if err := rows.Scan(&sess.ID, &sess.UserID, &sess.Title, &sess.CreatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// GetMessages returns the message list for a session.
func (s *SQLiteStore) GetMessages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	if err := s.checkSession(ctx, sessionID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, COALESCE(model, '') FROM messages
		 WHERE session_id = ? ORDER BY idx`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(&msg.Role, &msg.Content, &msg.Model); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// SaveMessages replaces the stored message list in one transaction.
func (s *SQLiteStore) SaveMessages(ctx context.Context, sessionID string, messages []domain.Message) error {
	if err := s.checkSession(ctx, sessionID); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, sessionID); err != nil {
		return err
	}
	for i, msg := range messages {
		var model sql.NullString
		if msg.Model != "" {
			model = sql.NullString{String: msg.Model, Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO messages (session_id, idx, role, content, model) VALUES (?, ?, ?, ?, ?)`,
			sessionID, i, msg.Role, msg.Content, model); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RenameSession updates the session title and returns the updated row.
func (s *SQLiteStore) RenameSession(ctx context.Context, sessionID, title string) (*domain.Session, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET title = ? WHERE session_id = ?`, title, sessionID)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrSessionNotFound
	}

	var sess domain.Session
	err = s.db.QueryRowContext(ctx,
		`SELECT session_id, user_id, title, created_at FROM sessions WHERE session_id = ?`,
		sessionID).Scan(&sess.ID, &sess.UserID, &sess.Title, &sess.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// DeleteSession removes the session row; the messages cascade with it.
func (s *SQLiteStore) DeleteSession(ctx context.Context, sessionID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *SQLiteStore) checkSession(ctx context.Context, sessionID string) error {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM sessions WHERE session_id = ?`, sessionID).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrSessionNotFound
	}
	return err
}
