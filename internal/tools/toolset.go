// Package tools declares the tool and UI action handlers that expose the
// todo repository to a host.
package tools

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nhle/todo-extension/internal/host"
	"github.com/nhle/todo-extension/internal/metrics"
	"github.com/nhle/todo-extension/internal/store"
)

// Entities named in a Change.
const (
	EntityProject  = "project"
	EntityTodo     = "todo"
	EntitySubItem  = "subitem"
	EntityComment  = "comment"
	EntitySettings = "settings"
	EntityGroup    = "group"
)

// Operations named in a Change.
const (
	OpUpsert = "upsert"
	OpDelete = "delete"
	OpToggle = "toggle"
	OpUpdate = "update"
)

// Change describes one committed mutation.
type Change struct {
	UserID string
	Entity string
	Op     string
	ID     string
	// TodoID is the affected todo for todo, subitem and comment changes.
	TodoID string
}

// ChangeFunc is called after a handler succeeds, once per mutation.
type ChangeFunc func(ctx context.Context, c Change)

// Toolset builds host descriptors over a repository.
type Toolset struct {
	repo     store.Repository
	onChange ChangeFunc
	validate *validator.Validate
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// Option configures a Toolset.
type Option func(*Toolset)

// WithChangeFunc sets the change notification callback.
func WithChangeFunc(fn ChangeFunc) Option {
	return func(t *Toolset) { t.onChange = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(t *Toolset) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithMetrics records per-tool call counts and durations.
func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Toolset) { t.metrics = m }
}

// New returns a Toolset. Each call is rebound to the caller's user from
// the context, falling back to repo's user.
func New(repo store.Repository, opts ...Option) *Toolset {
	t := &Toolset{
		repo:     repo,
		validate: NewValidator(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.Named("tools")
	return t
}

// call is the per-invocation state handed to a handler body.
type call struct {
	userID  string
	repo    store.Repository
	args    Args
	changes []Change
}

func (c *call) changed(entity, op, id, todoID string) {
	c.changes = append(c.changes, Change{
		UserID: c.userID,
		Entity: entity,
		Op:     op,
		ID:     id,
		TodoID: todoID,
	})
}

type runFunc func(ctx context.Context, c *call) (any, error)

type definition struct {
	id          string
	name        string
	description string
	params      []host.Param
	run         runFunc
}

func (t *Toolset) describe(kind host.Kind, defs []definition) []host.Descriptor {
	out := make([]host.Descriptor, 0, len(defs))
	for _, d := range defs {
		out = append(out, host.Descriptor{
			ID:          d.id,
			Name:        d.name,
			Description: d.description,
			Kind:        kind,
			Params:      d.params,
			Handler:     t.handler(d),
		})
	}
	return out
}

// Tools returns the model-callable tool descriptors.
func (t *Toolset) Tools() []host.Descriptor {
	var defs []definition
	defs = append(defs, projectTools()...)
	defs = append(defs, todoTools()...)
	defs = append(defs, subItemTools()...)
	defs = append(defs, commentTools()...)
	defs = append(defs, settingsTools()...)
	defs = append(defs, panelTools()...)
	return t.describe(host.KindTool, defs)
}

// Actions returns the UI action descriptors.
func (t *Toolset) Actions() []host.Descriptor {
	return t.describe(host.KindAction, uiActions())
}

func (t *Toolset) handler(d definition) host.Handler {
	return func(ctx context.Context, raw map[string]any) (res host.Result) {
		start := time.Now()
		outcome := metrics.OutcomeSuccess
		defer func() {
			if r := recover(); r != nil {
				outcome = metrics.OutcomePanic
				t.logger.Error("tool panicked", zap.String("tool", d.id), zap.Any("panic", r))
				res = Failure(ErrorMessage(r))
			}
			t.metrics.ObserveTool(d.id, outcome, time.Since(start))
		}()

		userID, ok := host.UserIDFromContext(ctx)
		if !ok {
			userID = t.repo.UserID()
		}
		logger := t.logger.With(zap.String("tool", d.id), zap.String("user_id", userID))

		args, err := Validate(t.validate, d.params, raw)
		if err != nil {
			outcome = metrics.OutcomeFailure
			logger.Debug("invalid arguments", zap.Error(err))
			return Failure(ErrorMessage(err))
		}

		repo := t.repo.ForUser(userID)
		if err := repo.Initialize(ctx); err != nil {
			outcome = metrics.OutcomeFailure
			logger.Error("initializing store", zap.Error(err))
			return Failure(ErrorMessage(err))
		}

		c := &call{userID: userID, repo: repo, args: args}
		data, err := d.run(ctx, c)
		if err != nil {
			outcome = metrics.OutcomeFailure
			logger.Debug("tool failed", zap.Error(err))
			return Failure(ErrorMessage(err))
		}

		for _, change := range c.changes {
			t.notify(ctx, logger, change)
		}
		return Success(data)
	}
}

func (t *Toolset) notify(ctx context.Context, logger *zap.Logger, c Change) {
	if t.onChange == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("change callback panicked", zap.String("entity", c.Entity), zap.Any("panic", r))
		}
	}()
	t.onChange(ctx, c)
}
