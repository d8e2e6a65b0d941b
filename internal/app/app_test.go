package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nhle/todo-extension/internal/extension"
	"github.com/nhle/todo-extension/internal/model"
)

func testConfig(t *testing.T) *model.AppConfig {
	t.Helper()
	cfg, err := model.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	cfg.Database.Path = filepath.Join(t.TempDir(), "todos.db")
	cfg.DefaultUserID = "alice"
	cfg.Profiles = map[string]model.ProfileConfig{
		"zed":   {FirstName: "Zed"},
		"bob":   {FirstName: "Bob", Language: "sv"},
		"alice": {Nickname: "Al"},
	}
	return cfg
}

func TestNewActivatesExtension(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), "test", WithLogger(zap.NewNop()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.True(t, a.Extension.Enabled())
	names := a.MCP.Names()
	assert.Contains(t, names, "todo_upsert")
	assert.Contains(t, names, "ui_panel_open")
	assert.Len(t, names, 22)
	assert.NotNil(t, a.Bus)

	assert.Equal(t, []string{"alice", "bob", "zed"}, a.KnownUsers())
}

func TestRestoreReminders(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	a, err := New(ctx, cfg, "test", WithLogger(zap.NewNop()))
	require.NoError(t, err)

	minutes := 10
	repo := a.Extension.Repository().ForUser("bob")
	_, err = repo.UpdateSettings(ctx, model.SettingsInput{DefaultReminderMinutes: model.Some(&minutes)})
	require.NoError(t, err)
	_, err = repo.UpsertTodo(ctx, "t1", model.TodoInput{
		Title:  model.Some("Renew passport"),
		Icon:   model.Some("id"),
		Status: model.Some(model.TodoStatusNotStarted),
		DueAt:  model.Some("2099-06-01T09:00:00Z"),
	})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	// A fresh process starts with an empty scheduler.
	a, err = New(ctx, cfg, "test", WithLogger(zap.NewNop()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	require.Empty(t, a.Scheduler.Pending())

	assert.Equal(t, 1, a.RestoreReminders(ctx))
	pending := a.Scheduler.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, extension.JobID("bob", "t1"), pending[0].ID)
}

func TestRestoreRemindersIncludesUsersWithoutProfile(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	a, err := New(ctx, cfg, "test", WithLogger(zap.NewNop()))
	require.NoError(t, err)

	minutes := 5
	carol := a.Extension.Repository().ForUser("carol")
	_, err = carol.UpdateSettings(ctx, model.SettingsInput{DefaultReminderMinutes: model.Some(&minutes)})
	require.NoError(t, err)
	_, err = carol.UpsertTodo(ctx, "c1", model.TodoInput{
		Title:  model.Some("Water plants"),
		Icon:   model.Some("leaf"),
		Status: model.Some(model.TodoStatusNotStarted),
		DueAt:  model.Some("2099-06-01T09:00:00Z"),
	})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	a, err = New(ctx, cfg, "test", WithLogger(zap.NewNop()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	assert.NotContains(t, a.KnownUsers(), "carol")

	assert.Equal(t, 1, a.RestoreReminders(ctx))
	pending := a.Scheduler.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, extension.JobID("carol", "c1"), pending[0].ID)
}

func TestEventsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Events.Enabled = false

	a, err := New(context.Background(), cfg, "test", WithLogger(zap.NewNop()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	assert.Nil(t, a.Bus)
}
