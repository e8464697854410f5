// Package opmode hosts the external execution cycle: the OpMode contract
// implemented by user code, the Cycle context handed to every feature hook,
// and the Driver that walks one cycle's phase sequence while keeping the
// registrar synchronized at every transition point.
package opmode

import (
	"time"

	"github.com/vk/opcycle/internal/feature"
)

// OpMode is one run of user code, structured into the fixed phase sequence
// Init, InitLoop (repeatable), Start, Loop (repeatable), Stop. The Driver
// calls each method between the corresponding pre and post feature hooks.
type OpMode interface {
	Init(c *Cycle) error
	InitLoop(c *Cycle) error
	Start(c *Cycle) error
	Loop(c *Cycle) error
	Stop(c *Cycle) error
}

// Flagged is implemented by OpModes that attach flags to their cycle context.
// Flags are read once at cycle start and stay fixed until cycle end.
type Flagged interface {
	Flags() []feature.Flag
}

// Named is implemented by OpModes that want a human-readable name in logs.
type Named interface {
	Name() string
}

// Cycle is the concrete execution context passed to features and user code.
// It satisfies feature.Cycle.
type Cycle struct {
	name  string
	flags feature.FlagSet
	start time.Time
}

// NewCycle builds a cycle context for the given OpMode, snapshotting its
// declared flags.
func NewCycle(om OpMode) *Cycle {
	name := "opmode"
	if n, ok := om.(Named); ok {
		name = n.Name()
	}
	flags := feature.NewFlagSet()
	if fl, ok := om.(Flagged); ok {
		flags = feature.NewFlagSet(fl.Flags()...)
	}
	return &Cycle{name: name, flags: flags, start: time.Now()}
}

// Name implements feature.Cycle.
func (c *Cycle) Name() string { return c.name }

// Flags implements feature.Cycle.
func (c *Cycle) Flags() feature.FlagSet { return c.flags }

// StartedAt implements feature.Cycle.
func (c *Cycle) StartedAt() time.Time { return c.start }

var _ feature.Cycle = (*Cycle)(nil)
