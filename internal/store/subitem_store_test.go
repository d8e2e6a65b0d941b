package store_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/todo-extension/internal/model"
	"github.com/nhle/todo-extension/internal/store"
	"github.com/nhle/todo-extension/tests/testutil"
)

func TestUpsertSubItem(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewTestStore(t, "u1")
	todo := mustTodo(t, repo, newTodoInput("Shopping"))

	_, err := repo.UpsertSubItem(ctx, "missing", "", model.SubItemInput{Text: model.Some("eggs")})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = repo.UpsertSubItem(ctx, todo.ID, "", model.SubItemInput{})
	assert.True(t, store.IsValidation(err))

	first, err := repo.UpsertSubItem(ctx, todo.ID, "", model.SubItemInput{Text: model.Some("eggs")})
	require.NoError(t, err)
	second, err := repo.UpsertSubItem(ctx, todo.ID, "", model.SubItemInput{Text: model.Some("milk")})
	require.NoError(t, err)
	assert.Equal(t, first.SortOrder+1, second.SortOrder)
	assert.False(t, first.Completed())

	done, err := repo.UpsertSubItem(ctx, todo.ID, first.ID, model.SubItemInput{Completed: model.Some(true)})
	require.NoError(t, err)
	assert.True(t, done.Completed())
	assert.Equal(t, "eggs", done.Text)

	moved, err := repo.UpsertSubItem(ctx, todo.ID, second.ID, model.SubItemInput{SortOrder: model.Some(-1)})
	require.NoError(t, err)
	assert.Equal(t, -1, moved.SortOrder)

	items, err := repo.ListSubItems(ctx, todo.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "milk", items[0].Text)
	assert.Equal(t, "eggs", items[1].Text)
	assert.True(t, items[1].Completed())

	got, err := repo.GetTodo(ctx, todo.ID)
	require.NoError(t, err)
	assert.Len(t, got.SubItems, 2)
}

func TestToggleSubItemTwiceRestoresState(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewTestStore(t, "u1")
	todo := mustTodo(t, repo, newTodoInput("Checklist"))
	item, err := repo.UpsertSubItem(ctx, todo.ID, "", model.SubItemInput{Text: model.Some("step")})
	require.NoError(t, err)

	toggled, ok, err := repo.ToggleSubItem(ctx, todo.ID, item.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, toggled.Completed())

	restored, ok, err := repo.ToggleSubItem(ctx, todo.ID, item.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, restored.Completed())

	items, err := repo.ListSubItems(ctx, todo.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].CompletedAt)
}

func TestToggleSubItemMissing(t *testing.T) {
	repo := testutil.NewTestStore(t, "u1")
	todo := mustTodo(t, repo, newTodoInput("Checklist"))

	item, ok, err := repo.ToggleSubItem(context.Background(), todo.ID, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, item)
}

func TestDeleteSubItem(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewTestStore(t, "u1")
	todo := mustTodo(t, repo, newTodoInput("Checklist"))
	item, err := repo.UpsertSubItem(ctx, todo.ID, "", model.SubItemInput{Text: model.Some("step")})
	require.NoError(t, err)

	deleted, err := repo.DeleteSubItem(ctx, todo.ID, item.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.DeleteSubItem(ctx, todo.ID, item.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

// interleavingExecutor runs hook once, just before the first statement
// matching prefix reaches the database.
type interleavingExecutor struct {
	store.Executor
	prefix string
	fired  bool
	hook   func()
}

func (e *interleavingExecutor) Execute(ctx context.Context, query string, args ...any) ([]store.Row, error) {
	if !e.fired && e.hook != nil && strings.HasPrefix(strings.TrimSpace(query), e.prefix) {
		e.fired = true
		e.hook()
	}
	return e.Executor.Execute(ctx, query, args...)
}

// Two toggles whose reads both happen before either write do not cancel
// out: the last write wins and the item ends up completed.
func TestToggleSubItemConcurrentTogglesLastWriteWins(t *testing.T) {
	ctx := context.Background()
	exec := &interleavingExecutor{
		Executor: testutil.NewTestExecutor(t),
		prefix:   "UPDATE subitems SET completed_at",
	}
	base := store.New(exec)
	require.NoError(t, base.Initialize(ctx))
	repo := base.ForUser("u1")

	todo := mustTodo(t, repo, newTodoInput("Race"))
	item, err := repo.UpsertSubItem(ctx, todo.ID, "", model.SubItemInput{Text: model.Some("step")})
	require.NoError(t, err)

	exec.hook = func() {
		_, ok, err := repo.ToggleSubItem(ctx, todo.ID, item.ID)
		require.NoError(t, err)
		require.True(t, ok)
	}

	toggled, ok, err := repo.ToggleSubItem(ctx, todo.ID, item.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, toggled.Completed())

	items, err := repo.ListSubItems(ctx, todo.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Completed(), "both toggles read the incomplete state, so neither undid the other")
}
