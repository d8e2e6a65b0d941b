package chat

import (
	"context"
	"errors"

	"github.com/nhle/todo-extension/internal/host"
)

// Fanout delivers every instruction to each sink in order.
type Fanout []host.Chat

// AppendInstruction implements host.Chat. Every sink is tried; failures are
// joined.
func (f Fanout) AppendInstruction(ctx context.Context, in host.Instruction) error {
	var errs []error
	for _, sink := range f {
		if sink == nil {
			continue
		}
		if err := sink.AppendInstruction(ctx, in); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
