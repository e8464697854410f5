package opmode

import (
	"context"
	"fmt"

	"github.com/vk/opcycle/internal/ctxlog"
	"github.com/vk/opcycle/internal/registrar"
)

// Driver runs OpModes through the full phase sequence against a registrar.
// One Driver drives one cycle at a time on a single goroutine; there is no
// concurrent dispatch.
type Driver struct {
	reg       *registrar.Registrar
	initLoops int
	mainLoops int
}

// Option configures a Driver.
type Option func(*Driver)

// WithInitLoops sets how many InitLoop iterations each cycle runs.
func WithInitLoops(n int) Option {
	return func(d *Driver) { d.initLoops = n }
}

// WithMainLoops sets how many Loop iterations each cycle runs.
func WithMainLoops(n int) Option {
	return func(d *Driver) { d.mainLoops = n }
}

// NewDriver builds a driver around the given registrar. By default a cycle
// runs one InitLoop and one Loop iteration.
func NewDriver(reg *registrar.Registrar, opts ...Option) *Driver {
	d := &Driver{reg: reg, initLoops: 1, mainLoops: 1}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registrar exposes the driver's registrar so feature owners can register
// against it.
func (d *Driver) Registrar() *registrar.Registrar { return d.reg }

// Run executes one full cycle of the given OpMode. The registrar is notified
// of the cycle start before any hook fires, the queue is drained once more
// right after to catch registrations made during the OpMode's construction,
// and every phase transition dispatches its pre and post hooks around the
// user code. The cycle-end reset always runs, even when a hook or the user
// code fails mid-cycle. Cancellation of ctx is honored between repeatable
// phase iterations.
func (d *Driver) Run(ctx context.Context, om OpMode) (err error) {
	logger := ctxlog.FromContext(ctx)

	c := NewCycle(om)
	logger.Info("Cycle starting.", "opMode", c.Name(), "flags", c.Flags().String())

	d.reg.OnCycleStart(ctx, c)
	// Catch features registered in the OpMode's constructor, which ran
	// before the context was swapped in.
	d.reg.ResolveQueue(ctx)

	defer func() {
		d.reg.OnCycleEnd(ctx, c)
		logger.Info("Cycle ended.", "opMode", c.Name())
	}()

	if err := d.phase(ctx, c, registrar.PhaseInit, om.Init); err != nil {
		return err
	}
	for i := 0; i < d.initLoops; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.phase(ctx, c, registrar.PhaseInitLoop, om.InitLoop); err != nil {
			return err
		}
	}
	if err := d.phase(ctx, c, registrar.PhaseStart, om.Start); err != nil {
		return err
	}
	for i := 0; i < d.mainLoops; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.phase(ctx, c, registrar.PhaseLoop, om.Loop); err != nil {
			return err
		}
	}
	return d.phase(ctx, c, registrar.PhaseStop, om.Stop)
}

// phase fires pre hook, user code, post hook for one phase transition.
func (d *Driver) phase(ctx context.Context, c *Cycle, p registrar.Phase, user func(*Cycle) error) error {
	if err := d.reg.Dispatch(ctx, c, p, registrar.PointPre); err != nil {
		return err
	}
	if err := user(c); err != nil {
		return fmt.Errorf("opmode %s %s: %w", c.Name(), p, err)
	}
	return d.reg.Dispatch(ctx, c, p, registrar.PointPost)
}
