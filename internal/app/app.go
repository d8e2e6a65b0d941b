// Package app assembles the standalone runtime: the SQLite executor, the
// in-process scheduler, chat sinks, the event bus and the MCP registrar,
// handed to the extension as its host capabilities.
package app

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/nhle/todo-extension/internal/chat"
	"github.com/nhle/todo-extension/internal/credential"
	"github.com/nhle/todo-extension/internal/events"
	"github.com/nhle/todo-extension/internal/extension"
	"github.com/nhle/todo-extension/internal/host"
	"github.com/nhle/todo-extension/internal/logging"
	"github.com/nhle/todo-extension/internal/mcpserver"
	"github.com/nhle/todo-extension/internal/metrics"
	"github.com/nhle/todo-extension/internal/model"
	"github.com/nhle/todo-extension/internal/scheduler"
	"github.com/nhle/todo-extension/internal/store"
)

// Name is announced to MCP clients.
const Name = "todo-extension"

// App is a running extension with its standalone host.
type App struct {
	Config    *model.AppConfig
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
	DB        *store.SQLExecutor
	Scheduler *scheduler.Scheduler
	Bus       *events.Bus
	Memory    *chat.Memory
	MCP       *mcpserver.Server
	Extension *extension.Extension

	unsubscribe func()
}

// Option adjusts the App before activation.
type Option func(*App)

// WithLogger replaces the logger built from the config.
func WithLogger(logger *zap.Logger) Option {
	return func(a *App) { a.Logger = logger }
}

// New opens the database and activates the extension against it.
func New(ctx context.Context, cfg *model.AppConfig, version string, opts ...Option) (*App, error) {
	a := &App{Config: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.Logger == nil {
		logger, err := logging.New(cfg.Log)
		if err != nil {
			return nil, err
		}
		a.Logger = logger
	}

	db, err := store.OpenSQLite(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	a.DB = db

	a.Metrics = metrics.New()
	a.Scheduler = scheduler.New(a.Logger)
	a.Memory = chat.NewMemory(a.Logger, cfg.Chat.History)
	a.MCP = mcpserver.New(Name, version, a.Logger)

	h := extension.Host{
		DB:            db,
		Scheduler:     a.Scheduler,
		Chat:          a.chatSinks(),
		Profiles:      profiles(cfg.Profiles),
		Registrar:     a.MCP,
		Logger:        a.Logger,
		Metrics:       a.Metrics,
		DefaultUserID: cfg.DefaultUserID,
		PageSize:      cfg.Reminders.PageSize,
	}
	if cfg.Events.Enabled {
		a.Bus = events.NewBus(a.Logger)
		a.unsubscribe = a.Bus.Subscribe(a.MCP.Forward)
		h.Events = a.Bus
	}

	ext, err := extension.Activate(ctx, h)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("activating extension: %w", err)
	}
	a.Extension = ext
	return a, nil
}

func (a *App) chatSinks() host.Chat {
	sinks := chat.Fanout{a.Memory}
	if a.Config.Mailbox.Enabled {
		sinks = append(sinks, chat.NewMailbox(a.Config.Mailbox, credential.New(""), a.Logger))
	}
	return sinks
}

func profiles(cfg map[string]model.ProfileConfig) host.StaticProfiles {
	out := make(host.StaticProfiles, len(cfg))
	for id, p := range cfg {
		out[id] = host.UserProfile{
			FirstName: p.FirstName,
			Nickname:  p.Nickname,
			Language:  p.Language,
			Timezone:  p.Timezone,
		}
	}
	return out
}

// KnownUsers returns the default user followed by every user with a
// configured profile.
func (a *App) KnownUsers() []string {
	users := []string{a.Config.DefaultUserID}
	var rest []string
	for id := range a.Config.Profiles {
		if id != a.Config.DefaultUserID {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	return append(users, rest...)
}

// RestoreReminders schedules every pending reminder of the known users and
// of every user that owns todos. The in-process scheduler starts empty, so
// serve calls this on startup.
func (a *App) RestoreReminders(ctx context.Context) int {
	users := a.KnownUsers()
	owners, err := store.Users(ctx, a.DB)
	if err != nil {
		a.Logger.Warn("listing todo owners", zap.Error(err))
	}
	seen := make(map[string]bool, len(users)+len(owners))
	for _, id := range users {
		seen[id] = true
	}
	for _, id := range owners {
		if !seen[id] {
			seen[id] = true
			users = append(users, id)
		}
	}

	total := 0
	for _, userID := range users {
		n, err := a.Extension.RescheduleAll(ctx, userID)
		if err != nil {
			a.Logger.Warn("restoring reminders", zap.String("user_id", userID), zap.Error(err))
			continue
		}
		total += n
	}
	return total
}

// Close deactivates the extension and releases every resource.
func (a *App) Close() error {
	var errs []error
	if a.Extension != nil {
		errs = append(errs, a.Extension.Deactivate())
	}
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return errors.Join(errs...)
}
