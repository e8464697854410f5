// Package controller provides the composite controller feature: a Feature
// that sums calculator contributions once per cycle phase and writes the
// result to an actuator. It is the canonical dependency-consuming feature of
// the system.
package controller

import (
	"fmt"
	"time"

	"github.com/vk/opcycle/internal/feature"
)

// Actuator is the opaque output sink a controller commands. Implementations
// are owned externally; the controller performs one Write per update plus an
// enable signal.
type Actuator interface {
	Write(value float64)
	SetEnabled(on bool)
}

// Controller is a Feature holding a mutable target, a list of calculator
// sub-components, and an actuator. While auto-update is enabled it recomputes
// and writes the summed output on the post hook of every phase except Stop;
// the Stop post hook unconditionally zeroes the actuator.
type Controller struct {
	feature.Base

	name       string
	deps       []feature.Dependency
	out        Actuator
	calcs      []Calculator
	target     float64
	autoUpdate bool

	now        func() time.Time
	lastUpdate time.Time
	primed     bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithTarget sets the initial target value.
func WithTarget(v float64) Option {
	return func(c *Controller) { c.target = v }
}

// WithCalculators appends calculator sub-components. Contributions are summed
// in the order given.
func WithCalculators(calcs ...Calculator) Option {
	return func(c *Controller) { c.calcs = append(c.calcs, calcs...) }
}

// WithDependencies declares the feature dependencies the controller needs
// before it activates.
func WithDependencies(deps ...feature.Dependency) Option {
	return func(c *Controller) { c.deps = append(c.deps, deps...) }
}

// WithAutoUpdate enables or disables per-cycle updates. Enabled by default.
func WithAutoUpdate(on bool) Option {
	return func(c *Controller) { c.autoUpdate = on }
}

// New builds a controller feature writing to the given actuator.
func New(name string, out Actuator, opts ...Option) *Controller {
	c := &Controller{
		name:       name,
		out:        out,
		autoUpdate: true,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// String implements fmt.Stringer for diagnostics.
func (c *Controller) String() string { return fmt.Sprintf("controller(%s)", c.name) }

// Dependencies implements feature.Feature.
func (c *Controller) Dependencies() []feature.Dependency { return c.deps }

// SetTarget changes the target the calculators steer toward.
func (c *Controller) SetTarget(v float64) { c.target = v }

// Target returns the current target.
func (c *Controller) Target() float64 { return c.target }

// SetAutoUpdate toggles per-cycle updates at runtime.
func (c *Controller) SetAutoUpdate(on bool) { c.autoUpdate = on }

// Update records the elapsed time since the previous update, sums every
// calculator's contribution for the current target, and writes the sum to the
// actuator. The first update after construction sees zero elapsed time, which
// time-dependent calculators treat as a no-op.
func (c *Controller) Update() {
	t := c.now()
	var elapsed time.Duration
	if c.primed {
		elapsed = t.Sub(c.lastUpdate)
	}
	c.lastUpdate = t
	c.primed = true

	var sum float64
	for _, calc := range c.calcs {
		sum += calc.Contribution(c.target, elapsed)
	}
	c.out.Write(sum)
}

// IsBusy reports whether the summed output of the error-based calculators is
// below the tolerance, clamped to [0, 1]. It reads the calculators' cached
// contributions and does not advance their state.
func (c *Controller) IsBusy(tolerance float64) bool {
	var sum float64
	for _, calc := range c.calcs {
		if _, ok := calc.(ErrorBased); ok {
			sum += calc.Last()
		}
	}
	return sum < clamp(tolerance, 0, 1)
}

// PostInit implements feature.Feature.
func (c *Controller) PostInit(feature.Cycle) error { return c.autoUpdated() }

// PostInitLoop implements feature.Feature.
func (c *Controller) PostInitLoop(feature.Cycle) error { return c.autoUpdated() }

// PostStart implements feature.Feature.
func (c *Controller) PostStart(feature.Cycle) error { return c.autoUpdated() }

// PostLoop implements feature.Feature.
func (c *Controller) PostLoop(feature.Cycle) error { return c.autoUpdated() }

// PostStop zeroes the actuator regardless of auto-update state.
func (c *Controller) PostStop(feature.Cycle) error {
	c.out.Write(0)
	return nil
}

func (c *Controller) autoUpdated() error {
	if c.autoUpdate {
		c.Update()
	}
	return nil
}
