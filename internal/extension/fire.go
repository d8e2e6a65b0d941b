package extension

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/nhle/todo-extension/internal/host"
	"github.com/nhle/todo-extension/internal/reminder"
	"github.com/nhle/todo-extension/internal/store"
)

// Reminder fire outcomes.
const (
	FireDelivered = "delivered"
	FireSkipped   = "skipped"
	FireFailed    = "failed"
)

func (e *Extension) handleFire(ctx context.Context, payload host.FirePayload, ec host.ExecutionContext) {
	outcome := e.deliver(ctx, payload, ec)
	e.host.Metrics.ReminderFired(outcome)
}

// deliver looks the todo up again, and when it is still active sends the
// reminder instruction to chat.
func (e *Extension) deliver(ctx context.Context, payload host.FirePayload, ec host.ExecutionContext) string {
	userID := payload.UserID
	if userID == "" {
		userID = ec.UserID
	}
	logger := e.logger.With(
		zap.String("user_id", userID),
		zap.String("todo_id", payload.TodoID),
		zap.String("job_id", ec.JobID))

	repo := e.repo.ForUser(userID)
	todo, err := repo.GetTodo(ctx, payload.TodoID)
	if errors.Is(err, store.ErrNotFound) {
		logger.Info("reminder fired for deleted todo")
		return FireSkipped
	}
	if err != nil {
		logger.Warn("loading todo for fired reminder", zap.Error(err))
		return FireFailed
	}
	if !reminder.IsActive(*todo) {
		logger.Info("reminder fired for inactive todo", zap.String("status", todo.Status))
		return FireSkipped
	}

	settings, err := repo.GetSettings(ctx)
	if err != nil {
		logger.Warn("loading settings for fired reminder", zap.Error(err))
		return FireFailed
	}

	var profile host.UserProfile
	if e.host.Profiles != nil {
		if profile, err = e.host.Profiles.Profile(ctx, userID); err != nil {
			logger.Warn("loading user profile", zap.Error(err))
			profile = host.UserProfile{}
		}
	}

	if e.host.Chat == nil {
		logger.Info("no chat capability, reminder dropped")
		return FireSkipped
	}

	text := reminder.BuildInstructionMessage(*todo, payload, *settings, reminder.MessageContext{
		Profile: profile,
		FiredAt: ec.FiredAt,
	})
	if err := e.host.Chat.AppendInstruction(ctx, host.Instruction{Text: text, UserID: userID}); err != nil {
		logger.Warn("delivering reminder", zap.Error(err))
		return FireFailed
	}
	logger.Info("reminder delivered")
	return FireDelivered
}
