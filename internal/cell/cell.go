// Package cell provides lazy evaluation cells, including a cycle-scoped
// variant that registers itself as a feature: it evaluates its supplier
// eagerly when the cycle's init phase begins and deregisters itself once the
// cycle stops. Owners use it to group per-cycle initialisation, e.g. hardware
// lookups, without writing a full feature.
package cell

import (
	"context"

	"github.com/vk/opcycle/internal/feature"
	"github.com/vk/opcycle/internal/registrar"
)

// Cell memoizes the result of a supplier function.
type Cell[T any] struct {
	supply func() T
	value  T
	done   bool
}

// NewCell builds a cell around the supplier. The supplier runs at most once
// per evaluation, on first Get.
func NewCell[T any](supply func() T) *Cell[T] {
	return &Cell[T]{supply: supply}
}

// Get evaluates the supplier on first call and returns the memoized value
// afterwards.
func (c *Cell[T]) Get() T {
	if !c.done {
		c.value = c.supply()
		c.done = true
	}
	return c.value
}

// Evaluated reports whether the supplier has run since the last reset.
func (c *Cell[T]) Evaluated() bool { return c.done }

// Reset discards the memoized value so the next Get re-evaluates.
func (c *Cell[T]) Reset() {
	var zero T
	c.value = zero
	c.done = false
}

// Lazy is a Cell that participates in the cycle lifecycle: it registers
// itself on construction, evaluates eagerly at the cycle's pre-init hook, and
// resets and deregisters itself after the cycle's post-stop hook.
type Lazy[T any] struct {
	feature.Base
	Cell[T]

	reg *registrar.Registrar
	ref feature.Ref
}

// NewLazy builds and registers a cycle-scoped lazy cell against the given
// registrar.
func NewLazy[T any](ctx context.Context, reg *registrar.Registrar, supply func() T) *Lazy[T] {
	l := &Lazy[T]{Cell: Cell[T]{supply: supply}, reg: reg}
	l.ref = registrar.RegisterFeature(ctx, reg, l)
	return l
}

// Dependencies implements feature.Feature; a lazy cell activates
// unconditionally.
func (l *Lazy[T]) Dependencies() []feature.Dependency { return nil }

// PreInit evaluates the cell eagerly at the start of init.
func (l *Lazy[T]) PreInit(feature.Cycle) error {
	l.Get()
	return nil
}

// PostStop resets the cell and removes it from the registrar; re-registration
// is the owner's choice on the next cycle. Hooks receive the cycle handle,
// not a context, so the deregistration runs on the background context and its
// debug log goes to the default logger.
func (l *Lazy[T]) PostStop(feature.Cycle) error {
	l.Reset()
	l.reg.Deregister(context.Background(), l.ref)
	return nil
}
