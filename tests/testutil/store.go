package testutil

import (
	"context"
	"testing"

	"github.com/nhle/todo-extension/internal/store"
)

// NewTestExecutor opens an in-memory SQLite executor. It is closed
// automatically when the test completes.
func NewTestExecutor(t *testing.T) *store.SQLExecutor {
	t.Helper()

	exec, err := store.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("opening test executor: %v", err)
	}

	t.Cleanup(func() {
		if err := exec.Close(); err != nil {
			t.Errorf("closing test executor: %v", err)
		}
	})

	return exec
}

// NewTestStore returns an initialized Store scoped to userID over a fresh
// in-memory database.
func NewTestStore(t *testing.T, userID string) *store.Store {
	t.Helper()

	s := store.New(NewTestExecutor(t))
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("initializing test store: %v", err)
	}
	return s.ForUser(userID).(*store.Store)
}
