package controller

import "time"

// Measurement supplies the current measured value of the controlled process,
// e.g. an encoder position. The error fed to the calculators is
// target - measurement.
type Measurement func() float64

// Calculator computes one contribution to the commanded output. Contributions
// from all of a controller's calculators are summed per update.
type Calculator interface {
	// Contribution computes this calculator's share for the given target and
	// the time elapsed since the previous update.
	Contribution(target float64, elapsed time.Duration) float64
	// Last returns the most recently computed contribution without
	// recomputing or advancing internal state.
	Last() float64
}

// ErrorBased marks calculators whose contribution is a function of the
// control error. Only these count toward Controller.IsBusy.
type ErrorBased interface {
	Calculator
	errorBased()
}

// Proportional contributes error × gain.
type Proportional struct {
	measure Measurement
	gain    float64
	last    float64
}

// NewProportional builds a proportional calculator.
func NewProportional(m Measurement, gain float64) *Proportional {
	return &Proportional{measure: m, gain: gain}
}

func (p *Proportional) Contribution(target float64, _ time.Duration) float64 {
	p.last = (target - p.measure()) * p.gain
	return p.last
}

func (p *Proportional) Last() float64 { return p.last }
func (p *Proportional) errorBased()   {}

// Integral accumulates error/elapsed × gain, clamped to its bounds. The
// accumulator persists across calls. A zero elapsed time is a no-op returning
// the previous output, so the accumulator never divides by zero.
type Integral struct {
	measure      Measurement
	gain         float64
	lower, upper float64
	sum          float64
}

// NewIntegral builds an integral calculator with the given output bounds.
func NewIntegral(m Measurement, gain, lower, upper float64) *Integral {
	return &Integral{measure: m, gain: gain, lower: lower, upper: upper}
}

func (i *Integral) Contribution(target float64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return i.sum
	}
	i.sum += (target - i.measure()) / elapsed.Seconds() * i.gain
	i.sum = clamp(i.sum, i.lower, i.upper)
	return i.sum
}

func (i *Integral) Last() float64 { return i.sum }
func (i *Integral) errorBased()   {}

// Derivative contributes (error − previousError)/elapsed × gain. The previous
// error persists across calls. A zero elapsed time is a no-op returning the
// previous output.
type Derivative struct {
	measure   Measurement
	gain      float64
	prevError float64
	primed    bool
	last      float64
}

// NewDerivative builds a derivative calculator.
func NewDerivative(m Measurement, gain float64) *Derivative {
	return &Derivative{measure: m, gain: gain}
}

func (d *Derivative) Contribution(target float64, elapsed time.Duration) float64 {
	err := target - d.measure()
	if elapsed <= 0 {
		// Still record the error so the first timed call has a baseline.
		d.prevError = err
		d.primed = true
		return d.last
	}
	if !d.primed {
		d.prevError = err
		d.primed = true
	}
	d.last = (err - d.prevError) / elapsed.Seconds() * d.gain
	d.prevError = err
	return d.last
}

func (d *Derivative) Last() float64 { return d.last }
func (d *Derivative) errorBased()   {}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
