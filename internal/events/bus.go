// Package events is an in-process implementation of host.Events.
package events

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Event names emitted by the extension.
const (
	TodosChanged    = "todos.changed"
	SettingsChanged = "settings.changed"
)

// Event is one emitted notification.
type Event struct {
	Name    string
	Payload any
}

// Handler receives emitted events.
type Handler func(ctx context.Context, e Event)

// Bus fans events out synchronously to its subscribers.
type Bus struct {
	logger *zap.Logger

	mu       sync.RWMutex
	handlers map[int]Handler
	nextID   int
}

// NewBus creates a Bus.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{logger: logger.Named("events"), handlers: make(map[int]Handler)}
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus) Subscribe(fn Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
	}
}

// Emit implements host.Events. A panicking subscriber is logged and does
// not stop delivery to the others.
func (b *Bus) Emit(ctx context.Context, name string, payload any) error {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	e := Event{Name: name, Payload: payload}
	for _, h := range handlers {
		b.deliver(ctx, h, e)
	}
	return nil
}

func (b *Bus) deliver(ctx context.Context, h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event subscriber panicked",
				zap.String("event", e.Name),
				zap.Any("panic", r))
		}
	}()
	h(ctx, e)
}
