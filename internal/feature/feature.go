package feature

import "time"

// Cycle is the opaque handle to the current execution cycle that every hook
// receives. The concrete implementation lives in the opmode package; features
// only ever read from it.
type Cycle interface {
	// Name identifies the running OpMode, for logging and diagnostics.
	Name() string
	// Flags returns the marker set snapshotted at cycle start. It is
	// immutable for the duration of the cycle.
	Flags() FlagSet
	// StartedAt reports when the cycle began.
	StartedAt() time.Time
}

// Feature is a pluggable unit of behavior with lifecycle hooks and optional
// dependency declarations. A Feature is created and owned by external code
// (typically an OpMode); the registrar tracks it only through non-owning
// references and must never be the reason it stays alive.
//
// Hooks fire in a fixed total order per cycle:
//
//	PreInit, PostInit,
//	PreInitLoop, PostInitLoop,   (repeated)
//	PreStart, PostStart,
//	PreLoop, PostLoop,           (repeated)
//	PreStop, PostStop.
//
// A hook returning a non-nil error aborts dispatch of that hook point to the
// features after it in active-set order and propagates to the host.
type Feature interface {
	// Dependencies returns the declarations that must all be satisfied
	// against the active set and cycle flags before this feature activates.
	// A nil or empty slice means the feature activates unconditionally.
	Dependencies() []Dependency

	PreInit(c Cycle) error
	PostInit(c Cycle) error
	PreInitLoop(c Cycle) error
	PostInitLoop(c Cycle) error
	PreStart(c Cycle) error
	PostStart(c Cycle) error
	PreLoop(c Cycle) error
	PostLoop(c Cycle) error
	PreStop(c Cycle) error
	PostStop(c Cycle) error
}

// Base provides no-op implementations of every lifecycle hook. Concrete
// features embed it and override only the hooks they care about.
type Base struct{}

func (Base) PreInit(Cycle) error      { return nil }
func (Base) PostInit(Cycle) error     { return nil }
func (Base) PreInitLoop(Cycle) error  { return nil }
func (Base) PostInitLoop(Cycle) error { return nil }
func (Base) PreStart(Cycle) error     { return nil }
func (Base) PostStart(Cycle) error    { return nil }
func (Base) PreLoop(Cycle) error      { return nil }
func (Base) PostLoop(Cycle) error     { return nil }
func (Base) PreStop(Cycle) error      { return nil }
func (Base) PostStop(Cycle) error     { return nil }
