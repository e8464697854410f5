// Package testutil holds shared helpers for the test suites: a thread-safe
// log buffer and a hook-recording feature stub.
package testutil

import (
	"fmt"
	"time"

	"github.com/vk/opcycle/internal/feature"
)

// Recorder accumulates hook invocations as "name:hook" strings, in order.
type Recorder struct {
	Events []string
}

// Record appends one event.
func (r *Recorder) Record(name, hook string) {
	r.Events = append(r.Events, fmt.Sprintf("%s:%s", name, hook))
}

// RecordFeature is a feature stub that logs every hook it receives to a
// shared Recorder. FailOn, when set to a hook name (e.g. "post_init"), makes
// that hook return an error.
type RecordFeature struct {
	FeatureName string
	Deps        []feature.Dependency
	Rec         *Recorder
	FailOn      string
}

// NewRecordFeature builds a stub recording into rec.
func NewRecordFeature(name string, rec *Recorder, deps ...feature.Dependency) *RecordFeature {
	return &RecordFeature{FeatureName: name, Deps: deps, Rec: rec}
}

// String implements fmt.Stringer so failure messages name the stub.
func (f *RecordFeature) String() string { return f.FeatureName }

// Dependencies implements feature.Feature.
func (f *RecordFeature) Dependencies() []feature.Dependency { return f.Deps }

func (f *RecordFeature) hook(name string) error {
	if f.Rec != nil {
		f.Rec.Record(f.FeatureName, name)
	}
	if f.FailOn == name {
		return fmt.Errorf("%s: induced failure at %s", f.FeatureName, name)
	}
	return nil
}

func (f *RecordFeature) PreInit(feature.Cycle) error      { return f.hook("pre_init") }
func (f *RecordFeature) PostInit(feature.Cycle) error     { return f.hook("post_init") }
func (f *RecordFeature) PreInitLoop(feature.Cycle) error  { return f.hook("pre_init_loop") }
func (f *RecordFeature) PostInitLoop(feature.Cycle) error { return f.hook("post_init_loop") }
func (f *RecordFeature) PreStart(feature.Cycle) error     { return f.hook("pre_start") }
func (f *RecordFeature) PostStart(feature.Cycle) error    { return f.hook("post_start") }
func (f *RecordFeature) PreLoop(feature.Cycle) error      { return f.hook("pre_loop") }
func (f *RecordFeature) PostLoop(feature.Cycle) error     { return f.hook("post_loop") }
func (f *RecordFeature) PreStop(feature.Cycle) error      { return f.hook("pre_stop") }
func (f *RecordFeature) PostStop(feature.Cycle) error     { return f.hook("post_stop") }

// StaticCycle is a minimal feature.Cycle for tests that don't need a driver.
type StaticCycle struct {
	CycleName string
	FlagSet   feature.FlagSet
}

// NewStaticCycle builds a cycle context carrying the given flags.
func NewStaticCycle(name string, flags ...feature.Flag) *StaticCycle {
	return &StaticCycle{CycleName: name, FlagSet: feature.NewFlagSet(flags...)}
}

// Name implements feature.Cycle.
func (c *StaticCycle) Name() string { return c.CycleName }

// Flags implements feature.Cycle.
func (c *StaticCycle) Flags() feature.FlagSet { return c.FlagSet }

// StartedAt implements feature.Cycle.
func (c *StaticCycle) StartedAt() time.Time { return time.Time{} }
