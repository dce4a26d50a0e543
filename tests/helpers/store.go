// Package helpers provides shared test constructors.
package helpers

import (
	"testing"

	"github.com/xiaot623/chatrelay/store"
)

// NewTestStore returns a fresh in-memory store.
func NewTestStore(t *testing.T) *store.MemoryStore {
	t.Helper()

	s := store.NewMemoryStore()
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

// NewTestSQLiteStore returns a fresh SQLite store backed by :memory:.
func NewTestSQLiteStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}
