package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/chatrelay/domain"
)

// testStores returns every Store implementation so the contract tests run
// against each backend.
func testStores(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestCreateSessionInitializesEmptyMessages(t *testing.T) {
	ctx := context.Background()
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			sess, err := s.CreateSession(ctx, "u1", "New Chat")
			require.NoError(t, err)
			assert.NotEmpty(t, sess.ID)
			assert.Equal(t, "u1", sess.UserID)
			assert.Equal(t, "New Chat", sess.Title)
			assert.False(t, sess.CreatedAt.IsZero())

			msgs, err := s.GetMessages(ctx, sess.ID)
			require.NoError(t, err)
			assert.NotNil(t, msgs)
			assert.Empty(t, msgs)
		})
	}
}

func TestCreateSessionIDsAreUnique(t *testing.T) {
	ctx := context.Background()
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			seen := make(map[string]bool)
			for i := 0; i < 50; i++ {
				sess, err := s.CreateSession(ctx, "u1", "t")
				require.NoError(t, err)
				assert.False(t, seen[sess.ID], "duplicate id %s", sess.ID)
				seen[sess.ID] = true
			}
		})
	}
}

func TestListSessionsNewestFirst(t *testing.T) {
	ctx := context.Background()
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			a, err := s.CreateSession(ctx, "u1", "A")
			require.NoError(t, err)
			time.Sleep(5 * time.Millisecond)
			b, err := s.CreateSession(ctx, "u1", "B")
			require.NoError(t, err)

			// Another owner's session must not appear.
			_, err = s.CreateSession(ctx, "u2", "other")
			require.NoError(t, err)

			sessions, err := s.ListSessions(ctx, "u1")
			require.NoError(t, err)
			require.Len(t, sessions, 2)
			assert.Equal(t, b.ID, sessions[0].ID)
			assert.Equal(t, a.ID, sessions[1].ID)
		})
	}
}

func TestListSessionsTieBreakByInsertionOrder(t *testing.T) {
	// Sessions created within the same timestamp tick must still list in a
	// deterministic order: most recently created first.
	ctx := context.Background()
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			var ids []string
			for i := 0; i < 10; i++ {
				sess, err := s.CreateSession(ctx, "u1", "t")
				require.NoError(t, err)
				ids = append(ids, sess.ID)
			}

			sessions, err := s.ListSessions(ctx, "u1")
			require.NoError(t, err)
			require.Len(t, sessions, len(ids))
			for i, sess := range sessions {
				assert.Equal(t, ids[len(ids)-1-i], sess.ID)
			}
		})
	}
}

func TestListSessionsEmptyForUnknownOwner(t *testing.T) {
	ctx := context.Background()
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			sessions, err := s.ListSessions(ctx, "nobody")
			require.NoError(t, err)
			assert.Empty(t, sessions)
		})
	}
}

func TestGetMessagesUnknownSession(t *testing.T) {
	ctx := context.Background()
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.GetMessages(ctx, "missing")
			assert.ErrorIs(t, err, ErrSessionNotFound)
		})
	}
}

func TestSaveMessagesRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			sess, err := s.CreateSession(ctx, "u1", "t")
			require.NoError(t, err)

			first := []domain.Message{
				{Role: domain.RoleUser, Content: "hi"},
				{Role: domain.RoleAssistant, Content: "hello", Model: "gpt-4o-mini"},
			}
			require.NoError(t, s.SaveMessages(ctx, sess.ID, first))

			got, err := s.GetMessages(ctx, sess.ID)
			require.NoError(t, err)
			assert.Equal(t, first, got)

			// A later save replaces, it never merges.
			second := []domain.Message{{Role: domain.RoleUser, Content: "only"}}
			require.NoError(t, s.SaveMessages(ctx, sess.ID, second))

			got, err = s.GetMessages(ctx, sess.ID)
			require.NoError(t, err)
			assert.Equal(t, second, got)
		})
	}
}

func TestSaveMessagesUnknownSession(t *testing.T) {
	ctx := context.Background()
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			err := s.SaveMessages(ctx, "missing", []domain.Message{{Role: domain.RoleUser, Content: "x"}})
			assert.ErrorIs(t, err, ErrSessionNotFound)
		})
	}
}

func TestRenameSession(t *testing.T) {
	ctx := context.Background()
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			sess, err := s.CreateSession(ctx, "u1", "before")
			require.NoError(t, err)

			renamed, err := s.RenameSession(ctx, sess.ID, "after")
			require.NoError(t, err)
			assert.Equal(t, "after", renamed.Title)
			assert.Equal(t, sess.ID, renamed.ID)

			sessions, err := s.ListSessions(ctx, "u1")
			require.NoError(t, err)
			require.Len(t, sessions, 1)
			assert.Equal(t, "after", sessions[0].Title)
		})
	}
}

func TestRenameSessionUnknownLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			sess, err := s.CreateSession(ctx, "u1", "keep")
			require.NoError(t, err)

			_, err = s.RenameSession(ctx, "missing", "new")
			assert.ErrorIs(t, err, ErrSessionNotFound)

			sessions, err := s.ListSessions(ctx, "u1")
			require.NoError(t, err)
			require.Len(t, sessions, 1)
			assert.Equal(t, sess.ID, sessions[0].ID)
			assert.Equal(t, "keep", sessions[0].Title)
		})
	}
}

func TestDeleteSessionRemovesMessages(t *testing.T) {
	ctx := context.Background()
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			sess, err := s.CreateSession(ctx, "u1", "t")
			require.NoError(t, err)
			require.NoError(t, s.SaveMessages(ctx, sess.ID, []domain.Message{{Role: domain.RoleUser, Content: "hi"}}))

			require.NoError(t, s.DeleteSession(ctx, sess.ID))

			_, err = s.GetMessages(ctx, sess.ID)
			assert.ErrorIs(t, err, ErrSessionNotFound)

			sessions, err := s.ListSessions(ctx, "u1")
			require.NoError(t, err)
			assert.Empty(t, sessions)
		})
	}
}

func TestDeleteSessionUnknown(t *testing.T) {
	ctx := context.Background()
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, s.DeleteSession(ctx, "missing"), ErrSessionNotFound)
		})
	}
}
