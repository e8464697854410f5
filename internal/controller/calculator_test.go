package controller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func constMeasure(v float64) Measurement { return func() float64 { return v } }

func TestProportional(t *testing.T) {
	p := NewProportional(constMeasure(0), 1)

	assert.InDelta(t, 10.0, p.Contribution(10, time.Second), 1e-9)
	assert.InDelta(t, 10.0, p.Last(), 1e-9)

	p2 := NewProportional(constMeasure(4), 0.5)
	assert.InDelta(t, 3.0, p2.Contribution(10, time.Second), 1e-9)
}

func TestIntegral(t *testing.T) {
	t.Run("accumulates across calls", func(t *testing.T) {
		i := NewIntegral(constMeasure(0), 0.1, -100, 100)

		assert.InDelta(t, 1.0, i.Contribution(10, time.Second), 1e-9)
		assert.InDelta(t, 2.0, i.Contribution(10, time.Second), 1e-9)
		assert.InDelta(t, 2.0, i.Last(), 1e-9)
	})

	t.Run("clamps to bounds", func(t *testing.T) {
		i := NewIntegral(constMeasure(0), 1, -1.5, 1.5)

		assert.InDelta(t, 1.5, i.Contribution(10, time.Second), 1e-9)
		assert.InDelta(t, 1.5, i.Contribution(10, time.Second), 1e-9)

		neg := NewIntegral(constMeasure(20), 1, -1.5, 1.5)
		assert.InDelta(t, -1.5, neg.Contribution(10, time.Second), 1e-9)
	})

	t.Run("zero elapsed time is a no-op", func(t *testing.T) {
		i := NewIntegral(constMeasure(0), 1, -100, 100)
		i.Contribution(10, time.Second)
		before := i.Last()

		assert.InDelta(t, before, i.Contribution(10, 0), 1e-9)
		assert.InDelta(t, before, i.Last(), 1e-9)
	})
}

func TestDerivative(t *testing.T) {
	t.Run("rate of error change", func(t *testing.T) {
		measured := 0.0
		d := NewDerivative(func() float64 { return measured }, 1)

		// Prime the previous error at zero elapsed.
		d.Contribution(10, 0)

		measured = 4 // error drops from 10 to 6 over one second
		assert.InDelta(t, -4.0, d.Contribution(10, time.Second), 1e-9)
		assert.InDelta(t, -4.0, d.Last(), 1e-9)
	})

	t.Run("zero elapsed time returns previous output", func(t *testing.T) {
		measured := 0.0
		d := NewDerivative(func() float64 { return measured }, 1)
		d.Contribution(10, 0)
		measured = 5
		d.Contribution(10, time.Second)
		last := d.Last()

		assert.InDelta(t, last, d.Contribution(10, 0), 1e-9)
	})

	t.Run("first timed call without priming sees no change", func(t *testing.T) {
		d := NewDerivative(constMeasure(0), 1)

		assert.InDelta(t, 0.0, d.Contribution(10, time.Second), 1e-9)
	})
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, clamp(-1, 0, 1))
	assert.Equal(t, 1.0, clamp(2, 0, 1))
	assert.Equal(t, 0.5, clamp(0.5, 0, 1))
}
