package opmode

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/opcycle/internal/feature"
	"github.com/vk/opcycle/internal/registrar"
	"github.com/vk/opcycle/internal/testutil"
)

// testOpMode records its own phase calls alongside feature hooks.
type testOpMode struct {
	name   string
	flags  []feature.Flag
	rec    *testutil.Recorder
	onLoop func(c *Cycle) error
}

func (m *testOpMode) Name() string          { return m.name }
func (m *testOpMode) Flags() []feature.Flag { return m.flags }

func (m *testOpMode) phase(name string) error {
	if m.rec != nil {
		m.rec.Record("om", name)
	}
	return nil
}

func (m *testOpMode) Init(*Cycle) error     { return m.phase("init") }
func (m *testOpMode) InitLoop(*Cycle) error { return m.phase("init_loop") }
func (m *testOpMode) Start(*Cycle) error    { return m.phase("start") }
func (m *testOpMode) Loop(c *Cycle) error {
	if m.onLoop != nil {
		if err := m.onLoop(c); err != nil {
			return err
		}
	}
	return m.phase("loop")
}
func (m *testOpMode) Stop(*Cycle) error { return m.phase("stop") }

func TestDriverRun(t *testing.T) {
	ctx := context.Background()

	t.Run("features registered before the cycle activate in order", func(t *testing.T) {
		// Scenario: A without deps, B depending on A, registered up front.
		rec := &testutil.Recorder{}
		reg := registrar.New()
		a := testutil.NewRecordFeature("a", rec)
		b := testutil.NewRecordFeature("b", rec, feature.Requires(a))
		registrar.RegisterFeature(ctx, reg, a)
		registrar.RegisterFeature(ctx, reg, b)

		d := NewDriver(reg, WithInitLoops(0), WithMainLoops(0))
		require.NoError(t, d.Run(ctx, &testOpMode{name: "teleop", rec: rec}))

		assert.Equal(t, []string{
			"a:pre_init", "b:pre_init",
			"om:init",
			"a:post_init", "b:post_init",
			"a:pre_start", "b:pre_start",
			"om:start",
			"a:post_start", "b:post_start",
			"a:pre_stop", "b:pre_stop",
			"om:stop",
			"a:post_stop", "b:post_stop",
		}, rec.Events)
	})

	t.Run("repeatable phases interleave user code and hooks", func(t *testing.T) {
		rec := &testutil.Recorder{}
		reg := registrar.New()
		a := testutil.NewRecordFeature("a", rec)
		registrar.RegisterFeature(ctx, reg, a)

		d := NewDriver(reg, WithInitLoops(2), WithMainLoops(2))
		require.NoError(t, d.Run(ctx, &testOpMode{name: "teleop", rec: rec}))

		assert.Equal(t, []string{
			"a:pre_init", "om:init", "a:post_init",
			"a:pre_init_loop", "om:init_loop", "a:post_init_loop",
			"a:pre_init_loop", "om:init_loop", "a:post_init_loop",
			"a:pre_start", "om:start", "a:post_start",
			"a:pre_loop", "om:loop", "a:post_loop",
			"a:pre_loop", "om:loop", "a:post_loop",
			"a:pre_stop", "om:stop", "a:post_stop",
		}, rec.Events)
	})

	t.Run("flag-gated feature never activates without the flag", func(t *testing.T) {
		// Scenario: C depends on flag "attach" the context does not carry.
		rec := &testutil.Recorder{}
		reg := registrar.New()
		c := testutil.NewRecordFeature("c", rec, feature.RequiresFlag("attach"))
		registrar.RegisterFeature(ctx, reg, c)

		om := &testOpMode{name: "teleop"}
		d := NewDriver(reg)
		require.NoError(t, d.Run(ctx, om))
		assert.Empty(t, rec.Events, "c must never receive hooks")

		err := reg.CheckFeatures(NewCycle(om), c)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "attach")
	})

	t.Run("flag-gated feature activates when the opmode declares the flag", func(t *testing.T) {
		rec := &testutil.Recorder{}
		reg := registrar.New()
		c := testutil.NewRecordFeature("c", rec, feature.RequiresFlag("attach"))
		registrar.RegisterFeature(ctx, reg, c)

		om := &testOpMode{name: "teleop", flags: []feature.Flag{"attach"}}
		d := NewDriver(reg, WithInitLoops(0), WithMainLoops(0))
		require.NoError(t, d.Run(ctx, om))

		assert.Contains(t, rec.Events, "c:post_stop")
	})

	t.Run("active set does not carry across cycles", func(t *testing.T) {
		// Scenario: D active in cycle one is absent from cycle two until
		// re-registered.
		rec := &testutil.Recorder{}
		reg := registrar.New()
		d := testutil.NewRecordFeature("d", rec)
		ref := registrar.RegisterFeature(ctx, reg, d)

		driver := NewDriver(reg, WithInitLoops(0), WithMainLoops(0))
		om := &testOpMode{name: "teleop"}

		require.NoError(t, driver.Run(ctx, om))
		afterFirst := len(rec.Events)
		require.NotZero(t, afterFirst)

		require.NoError(t, driver.Run(ctx, om))
		assert.Len(t, rec.Events, afterFirst, "d received hooks in the second cycle without re-registration")

		reg.Register(ctx, ref)
		require.NoError(t, driver.Run(ctx, om))
		assert.Greater(t, len(rec.Events), afterFirst)
	})

	t.Run("registration mid-cycle is picked up at the next dispatch point", func(t *testing.T) {
		rec := &testutil.Recorder{}
		reg := registrar.New()
		late := testutil.NewRecordFeature("late", rec)

		d := NewDriver(reg, WithInitLoops(0), WithMainLoops(1))
		om := &testOpMode{name: "teleop", onLoop: func(*Cycle) error {
			registrar.RegisterFeature(ctx, d.Registrar(), late)
			return nil
		}}
		require.NoError(t, d.Run(ctx, om))

		assert.Equal(t, []string{
			"late:post_loop",
			"late:pre_stop", "late:post_stop",
		}, rec.Events)
	})

	t.Run("hook failure aborts the cycle but still resets state", func(t *testing.T) {
		rec := &testutil.Recorder{}
		reg := registrar.New()
		bad := testutil.NewRecordFeature("bad", rec)
		bad.FailOn = "post_start"
		registrar.RegisterFeature(ctx, reg, bad)

		d := NewDriver(reg)
		err := d.Run(ctx, &testOpMode{name: "teleop"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "post-start")
		assert.False(t, reg.CycleRunning(), "cycle end must run even on failure")
		assert.Empty(t, reg.ActiveFeatures())
	})

	t.Run("context cancellation stops repeatable phases", func(t *testing.T) {
		reg := registrar.New()
		runCtx, cancel := context.WithCancel(ctx)

		loops := 0
		om := &testOpMode{name: "teleop", onLoop: func(*Cycle) error {
			loops++
			cancel()
			return nil
		}}

		d := NewDriver(reg, WithInitLoops(0), WithMainLoops(100))
		err := d.Run(runCtx, om)

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, loops)
		assert.False(t, reg.CycleRunning())
	})
}

func TestNewCycle(t *testing.T) {
	om := &testOpMode{name: "auto", flags: []feature.Flag{"attach"}}
	c := NewCycle(om)

	assert.Equal(t, "auto", c.Name())
	assert.True(t, c.Flags().Has("attach"))
	assert.False(t, c.StartedAt().IsZero())
}
