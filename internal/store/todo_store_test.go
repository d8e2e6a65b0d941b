package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/todo-extension/internal/model"
	"github.com/nhle/todo-extension/internal/store"
	"github.com/nhle/todo-extension/tests/testutil"
)

func TestUpsertTodoCreateRequiresFields(t *testing.T) {
	tests := []struct {
		name  string
		in    model.TodoInput
		field string
	}{
		{
			name:  "missing title",
			in:    model.TodoInput{Icon: model.Some("x"), Status: model.Some(model.TodoStatusNotStarted)},
			field: "title",
		},
		{
			name:  "missing icon",
			in:    model.TodoInput{Title: model.Some("t"), Status: model.Some(model.TodoStatusNotStarted)},
			field: "icon",
		},
		{
			name:  "missing status",
			in:    model.TodoInput{Title: model.Some("t"), Icon: model.Some("x")},
			field: "status",
		},
		{
			name:  "blank title",
			in:    model.TodoInput{Title: model.Some("  "), Icon: model.Some("x"), Status: model.Some(model.TodoStatusNotStarted)},
			field: "title",
		},
		{
			name:  "unknown status",
			in:    model.TodoInput{Title: model.Some("t"), Icon: model.Some("x"), Status: model.Some("someday")},
			field: "status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := testutil.NewTestStore(t, "u1")
			_, err := repo.UpsertTodo(context.Background(), "", tt.in)
			require.Error(t, err)

			var verr *store.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestUpsertTodoUsesSuppliedID(t *testing.T) {
	repo := testutil.NewTestStore(t, "u1")
	todo, err := repo.UpsertTodo(context.Background(), "todo-1", newTodoInput("Call"))
	require.NoError(t, err)
	assert.Equal(t, "todo-1", todo.ID)

	generated := mustTodo(t, repo, newTodoInput("Other"))
	assert.NotEmpty(t, generated.ID)
	assert.NotEqual(t, "todo-1", generated.ID)
}

func TestUpsertTodoPartialUpdateKeepsFields(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewTestStore(t, "u1")
	p := mustProject(t, repo, "Work")

	in := newTodoInput("Write report")
	in.Description = model.Some(model.Ptr("quarterly numbers"))
	in.ProjectID = model.Some(&p.ID)
	in.ReminderMinutes = model.Some(model.Ptr(15))
	created := mustTodo(t, repo, in)

	updated, err := repo.UpsertTodo(ctx, created.ID, model.TodoInput{
		Status: model.Some(model.TodoStatusCompleted),
	})
	require.NoError(t, err)

	assert.Equal(t, model.TodoStatusCompleted, updated.Status)
	assert.Equal(t, created.Title, updated.Title)
	assert.Equal(t, created.Description, updated.Description)
	assert.Equal(t, created.Icon, updated.Icon)
	assert.Equal(t, created.DueAt, updated.DueAt)
	assert.Equal(t, created.Date, updated.Date)
	assert.Equal(t, created.Time, updated.Time)
	assert.Equal(t, created.ProjectID, updated.ProjectID)
	assert.Equal(t, created.ReminderMinutes, updated.ReminderMinutes)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	stored, err := repo.GetTodo(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TodoStatusCompleted, stored.Status)
	assert.Equal(t, "Write report", stored.Title)
	require.NotNil(t, stored.Description)
	assert.Equal(t, "quarterly numbers", *stored.Description)
}

func TestUpsertTodoDerivesDateTime(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewTestStore(t, "u1")

	in := newTodoInput("Standup")
	in.DueAt = model.Some("2025-02-10T09:00:00+01:00")
	todo := mustTodo(t, repo, in)
	assert.Equal(t, "2025-02-10", todo.Date)
	assert.Equal(t, "09:00", todo.Time)

	moved, err := repo.UpsertTodo(ctx, todo.ID, model.TodoInput{DueAt: model.Some("2025-02-11T14:30:00+01:00")})
	require.NoError(t, err)
	assert.Equal(t, "2025-02-11", moved.Date)
	assert.Equal(t, "14:30", moved.Time)

	allDay, err := repo.UpsertTodo(ctx, todo.ID, model.TodoInput{AllDay: model.Some(true)})
	require.NoError(t, err)
	assert.Equal(t, "2025-02-11", allDay.Date)
	assert.Equal(t, "00:00", allDay.Time)
}

func TestReminderMinutesPresence(t *testing.T) {
	tests := []struct {
		name string
		in   model.Optional[*int]
	}{
		{name: "absent", in: model.Optional[*int]{}},
		{name: "explicit null", in: model.Some[*int](nil)},
		{name: "value", in: model.Some(model.Ptr(45))},
		{name: "zero", in: model.Some(model.Ptr(0))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := testutil.NewTestStore(t, "u1")

			in := newTodoInput("Reminder")
			in.ReminderMinutes = tt.in
			created := mustTodo(t, repo, in)

			got, err := repo.GetTodo(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.in, got.ReminderMinutes)
		})
	}
}

func TestUpsertTodoRejectsUnknownProject(t *testing.T) {
	repo := testutil.NewTestStore(t, "u1")
	in := newTodoInput("Orphan")
	in.ProjectID = model.Some(model.Ptr("missing"))

	_, err := repo.UpsertTodo(context.Background(), "", in)
	require.Error(t, err)
	assert.True(t, store.IsValidation(err))
}

func TestUpsertTodoNoProjectSentinel(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewTestStore(t, "u1")
	p := mustProject(t, repo, "Home")

	in := newTodoInput("Dishes")
	in.ProjectID = model.Some(&p.ID)
	todo := mustTodo(t, repo, in)

	updated, err := repo.UpsertTodo(ctx, todo.ID, model.TodoInput{
		ProjectID: model.Some(model.Ptr(model.NoProjectGroupID)),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.ProjectID)
}

func TestDeleteTodoCascades(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewTestStore(t, "u1")
	todo := mustTodo(t, repo, newTodoInput("Pack"))

	_, err := repo.AddComment(ctx, todo.ID, "", "remember the charger")
	require.NoError(t, err)
	_, err = repo.UpsertSubItem(ctx, todo.ID, "", model.SubItemInput{Text: model.Some("socks")})
	require.NoError(t, err)

	deleted, err := repo.DeleteTodo(ctx, todo.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	comments, err := repo.ListComments(ctx, todo.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	items, err := repo.ListSubItems(ctx, todo.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = repo.GetTodo(ctx, todo.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	again, err := repo.DeleteTodo(ctx, todo.ID)
	require.NoError(t, err)
	assert.False(t, again)
}

func TestListTodosFiltersAndOrder(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewTestStore(t, "u1")
	p := mustProject(t, repo, "Errands")

	late := newTodoInput("Buy groceries")
	late.DueAt = model.Some("2025-03-05T10:00:00Z")
	late.ProjectID = model.Some(&p.ID)
	mustTodo(t, repo, late)

	early := newTodoInput("Call plumber")
	early.DueAt = model.Some("2025-03-01T08:00:00Z")
	early.Description = model.Some(model.Ptr("kitchen SINK leaks"))
	mustTodo(t, repo, early)

	undated := newTodoInput("Someday")
	undated.DueAt = model.Some("")
	undated.Status = model.Some(model.TodoStatusInProgress)
	mustTodo(t, repo, undated)

	all, err := repo.ListTodos(ctx, store.TodoFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Call plumber", "Buy groceries", "Someday"},
		[]string{all[0].Title, all[1].Title, all[2].Title})

	tests := []struct {
		name   string
		filter store.TodoFilter
		want   []string
	}{
		{name: "query matches description case-insensitively", filter: store.TodoFilter{Query: model.Ptr("sink")}, want: []string{"Call plumber"}},
		{name: "query matches title", filter: store.TodoFilter{Query: model.Ptr("GROCER")}, want: []string{"Buy groceries"}},
		{name: "query with wildcard characters is literal", filter: store.TodoFilter{Query: model.Ptr("%")}, want: []string{}},
		{name: "project filter", filter: store.TodoFilter{ProjectID: &p.ID}, want: []string{"Buy groceries"}},
		{name: "no project filter", filter: store.TodoFilter{ProjectID: model.Ptr(model.NoProjectGroupID)}, want: []string{"Call plumber", "Someday"}},
		{name: "status filter", filter: store.TodoFilter{Status: model.Ptr(model.TodoStatusInProgress)}, want: []string{"Someday"}},
		{name: "limit", filter: store.TodoFilter{Limit: 1}, want: []string{"Call plumber"}},
		{name: "offset", filter: store.TodoFilter{Limit: 2, Offset: 1}, want: []string{"Buy groceries", "Someday"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			todos, err := repo.ListTodos(ctx, tt.filter)
			require.NoError(t, err)
			titles := make([]string, 0, len(todos))
			for _, todo := range todos {
				titles = append(titles, todo.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestListTodosDefaultLimit(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewTestStore(t, "u1")
	for i := 0; i < store.DefaultLimit+5; i++ {
		mustTodo(t, repo, newTodoInput("bulk"))
	}

	todos, err := repo.ListTodos(ctx, store.TodoFilter{})
	require.NoError(t, err)
	assert.Len(t, todos, store.DefaultLimit)
}
