// Package extension wires host capabilities to the todo repository, the
// tool layer and reminder scheduling.
package extension

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/nhle/todo-extension/internal/host"
	"github.com/nhle/todo-extension/internal/metrics"
	"github.com/nhle/todo-extension/internal/store"
	"github.com/nhle/todo-extension/internal/tools"
)

// DefaultPageSize bounds each page of a bulk reschedule.
const DefaultPageSize = 200

// Host holds the capabilities granted on activation. Only DB is required;
// every other missing capability disables the feature that needs it.
type Host struct {
	DB        store.Executor
	Scheduler host.Scheduler
	Chat      host.Chat
	Profiles  host.Profiles
	Events    host.Events
	Registrar host.Registrar

	Logger  *zap.Logger
	Metrics *metrics.Metrics

	// DefaultUserID owns calls that carry no user in their context.
	DefaultUserID string
	PageSize      int
}

// Extension is an activated extension instance.
type Extension struct {
	host    Host
	logger  *zap.Logger
	repo    store.Repository
	toolset *tools.Toolset

	mu            sync.Mutex
	registrations []host.Registration
	subscription  host.Subscription
	active        bool
}

// Activate initializes the store and registers tools, UI actions and the
// reminder fire handler. Without a DB capability the returned Extension is
// disabled and Activate does nothing else.
func Activate(ctx context.Context, h Host) (*Extension, error) {
	if h.Logger == nil {
		h.Logger = zap.NewNop()
	}
	if h.PageSize <= 0 {
		h.PageSize = DefaultPageSize
	}
	if h.DefaultUserID == "" {
		h.DefaultUserID = "local"
	}

	e := &Extension{host: h, logger: h.Logger.Named("extension")}
	if h.DB == nil {
		e.logger.Info("no database capability granted, extension disabled")
		return e, nil
	}

	repo := store.New(h.DB).ForUser(h.DefaultUserID)
	if err := repo.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	e.repo = repo
	e.toolset = tools.New(repo,
		tools.WithLogger(h.Logger),
		tools.WithMetrics(h.Metrics),
		tools.WithChangeFunc(e.handleChange),
	)

	if err := e.register(); err != nil {
		_ = e.Deactivate()
		return nil, err
	}

	if h.Scheduler != nil {
		e.subscription = h.Scheduler.OnFire(e.handleFire)
	}

	e.active = true
	e.logger.Info("extension activated",
		zap.Int("registrations", len(e.registrations)),
		zap.Bool("reminders", h.Scheduler != nil))
	return e, nil
}

func (e *Extension) register() error {
	r := e.host.Registrar
	if r == nil {
		return nil
	}

	for _, d := range e.toolset.Tools() {
		reg, err := r.Register(d)
		if err != nil {
			return fmt.Errorf("registering tool %s: %w", d.ID, err)
		}
		e.registrations = append(e.registrations, reg)
	}

	ar, ok := r.(host.ActionRegistrar)
	if !ok {
		return nil
	}
	for _, d := range e.toolset.Actions() {
		reg, err := ar.RegisterAction(d)
		if err != nil {
			return fmt.Errorf("registering action %s: %w", d.ID, err)
		}
		e.registrations = append(e.registrations, reg)
	}
	return nil
}

// Enabled reports whether activation found a database capability.
func (e *Extension) Enabled() bool {
	return e.repo != nil
}

// Repository returns the store bound to the default user, or nil when
// disabled.
func (e *Extension) Repository() store.Repository {
	return e.repo
}

// Deactivate disposes every registration and the fire subscription. It is
// safe to call more than once.
func (e *Extension) Deactivate() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var errs []error
	for _, reg := range e.registrations {
		if err := reg.Dispose(); err != nil {
			errs = append(errs, err)
		}
	}
	e.registrations = nil

	if e.subscription != nil {
		e.subscription.Dispose()
		e.subscription = nil
	}
	if e.active {
		e.logger.Info("extension deactivated")
	}
	e.active = false
	return errors.Join(errs...)
}
