package effects

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Batch collects effects and applies them once.
type Batch struct {
	mu        sync.Mutex
	effects   []Effect
	committed bool
}

// New creates a batch staged with the given effects.
func New(effects ...Effect) *Batch {
	return &Batch{effects: append([]Effect(nil), effects...)}
}

// Add stages more effects.
func (b *Batch) Add(effects ...Effect) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.committed {
		return ErrAlreadyCommitted
	}

	b.effects = append(b.effects, effects...)

	return nil
}

// Commit applies every staged effect in order. A failing effect does not
// stop the ones after it; all failures are returned joined.
func (b *Batch) Commit(ctx context.Context, env Env) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.committed {
		return ErrAlreadyCommitted
	}

	var errs []error

	for _, effect := range b.effects {
		if err := effect.Apply(ctx, env); err != nil {
			errs = append(errs, fmt.Errorf("effect %q failed: %w", effect.Description(), err))
		}
	}

	b.committed = true

	return errors.Join(errs...)
}

// Effects returns a copy of staged effects (for inspection/testing).
func (b *Batch) Effects() []Effect {
	b.mu.Lock()
	defer b.mu.Unlock()

	result := make([]Effect, len(b.effects))
	copy(result, b.effects)

	return result
}
