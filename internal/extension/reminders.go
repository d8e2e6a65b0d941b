package extension

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/todo-extension/internal/events"
	"github.com/nhle/todo-extension/internal/host"
	"github.com/nhle/todo-extension/internal/model"
	"github.com/nhle/todo-extension/internal/reminder"
	"github.com/nhle/todo-extension/internal/store"
	"github.com/nhle/todo-extension/internal/tools"
)

// JobID keys a todo's reminder job by user and todo.
func JobID(userID, todoID string) string {
	return "todo-reminder:" + userID + ":" + todoID
}

// Planned is the computed reminder of one todo.
type Planned struct {
	TodoID string         `json:"todoId"`
	Title  string         `json:"title"`
	State  reminder.State `json:"state"`
	FireAt *time.Time     `json:"fireAt,omitempty"`
}

// handleChange runs the best-effort side effects of a committed mutation.
// Nothing here fails the tool call.
func (e *Extension) handleChange(ctx context.Context, c tools.Change) {
	logger := e.logger.With(zap.String("user_id", c.UserID), zap.String("entity", c.Entity))

	e.emit(ctx, logger, events.TodosChanged, map[string]any{
		"userId": c.UserID,
		"entity": c.Entity,
		"op":     c.Op,
		"id":     c.ID,
	})

	switch c.Entity {
	case tools.EntityTodo:
		if c.Op == tools.OpDelete {
			e.cancel(ctx, logger, c.UserID, c.TodoID)
			return
		}
		repo := e.repo.ForUser(c.UserID)
		todo, err := repo.GetTodo(ctx, c.TodoID)
		if err != nil {
			logger.Warn("loading todo for reminder", zap.String("todo_id", c.TodoID), zap.Error(err))
			return
		}
		settings, err := repo.GetSettings(ctx)
		if err != nil {
			logger.Warn("loading settings for reminder", zap.Error(err))
			return
		}
		e.scheduleTodo(ctx, logger, c.UserID, *todo, *settings)

	case tools.EntitySettings:
		e.emit(ctx, logger, events.SettingsChanged, map[string]any{"userId": c.UserID})
		if _, err := e.RescheduleAll(ctx, c.UserID); err != nil {
			logger.Warn("rescheduling reminders", zap.Error(err))
		}
	}
}

func (e *Extension) emit(ctx context.Context, logger *zap.Logger, name string, payload map[string]any) {
	if e.host.Events == nil {
		return
	}
	if err := e.host.Events.Emit(ctx, name, payload); err != nil {
		logger.Warn("emitting event", zap.String("event", name), zap.Error(err))
	}
}

// scheduleTodo submits the todo's reminder job, or cancels it when the todo
// no longer has a reminder. Returns whether a job was scheduled.
func (e *Extension) scheduleTodo(ctx context.Context, logger *zap.Logger, userID string, todo model.Todo, settings model.Settings) bool {
	if e.host.Scheduler == nil {
		return false
	}

	state, at := reminder.Evaluate(todo, settings)
	if state != reminder.StateScheduled {
		e.cancel(ctx, logger, userID, todo.ID)
		return false
	}

	job := host.Job{
		ID:     JobID(userID, todo.ID),
		FireAt: at,
		Payload: host.FirePayload{
			TodoID:      todo.ID,
			UserID:      userID,
			ScheduledAt: at,
		},
		MisfirePolicy: host.MisfireRunOnce,
		UserID:        userID,
	}
	if err := e.host.Scheduler.Schedule(ctx, job); err != nil {
		logger.Warn("scheduling reminder", zap.String("job_id", job.ID), zap.Error(err))
		return false
	}
	e.host.Metrics.ReminderScheduled()
	logger.Debug("reminder scheduled",
		zap.String("job_id", job.ID),
		zap.String("fire_at", reminder.FormatTimestamp(at)))
	return true
}

func (e *Extension) cancel(ctx context.Context, logger *zap.Logger, userID, todoID string) {
	if e.host.Scheduler == nil {
		return
	}
	id := JobID(userID, todoID)
	if err := e.host.Scheduler.Cancel(ctx, id); err != nil {
		logger.Warn("cancelling reminder", zap.String("job_id", id), zap.Error(err))
		return
	}
	e.host.Metrics.ReminderCancelled()
}

// RescheduleAll recomputes the reminder of every todo of userID, one page
// at a time. Returns how many jobs were scheduled.
func (e *Extension) RescheduleAll(ctx context.Context, userID string) (int, error) {
	if e.repo == nil {
		return 0, errDisabled
	}
	repo := e.repo.ForUser(userID)
	settings, err := repo.GetSettings(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading settings: %w", err)
	}

	logger := e.logger.With(zap.String("user_id", userID))
	scheduled := 0
	err = e.eachTodo(ctx, repo, func(todo model.Todo) {
		if e.scheduleTodo(ctx, logger, userID, todo, *settings) {
			scheduled++
		}
	})
	if err != nil {
		return scheduled, err
	}
	logger.Info("reminders rescheduled", zap.Int("scheduled", scheduled))
	return scheduled, nil
}

// Plan computes every todo's reminder for userID without scheduling.
func (e *Extension) Plan(ctx context.Context, userID string) ([]Planned, error) {
	if e.repo == nil {
		return nil, errDisabled
	}
	repo := e.repo.ForUser(userID)
	settings, err := repo.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	var out []Planned
	err = e.eachTodo(ctx, repo, func(todo model.Todo) {
		state, at := reminder.Evaluate(todo, *settings)
		p := Planned{TodoID: todo.ID, Title: todo.Title, State: state}
		if state == reminder.StateScheduled {
			p.FireAt = &at
		}
		out = append(out, p)
	})
	return out, err
}

func (e *Extension) eachTodo(ctx context.Context, repo store.Repository, fn func(model.Todo)) error {
	for offset := 0; ; offset += e.host.PageSize {
		page, err := repo.ListTodos(ctx, store.TodoFilter{Limit: e.host.PageSize, Offset: offset})
		if err != nil {
			return fmt.Errorf("listing todos at offset %d: %w", offset, err)
		}
		for _, todo := range page {
			fn(todo)
		}
		if len(page) < e.host.PageSize {
			return nil
		}
	}
}

var errDisabled = errors.New("extension disabled: no database capability")
