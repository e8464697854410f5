package app

import (
	"time"

	"github.com/vk/opcycle/internal/config"
	"github.com/vk/opcycle/internal/feature"
	"github.com/vk/opcycle/internal/opmode"
)

// Plant is a first-order simulated process standing in for real hardware:
// the controller's commanded output is treated as a velocity, integrated into
// a position once per loop step. Position doubles as the measurement the
// calculators read.
type Plant struct {
	position float64
	command  float64
	enabled  bool
	dt       time.Duration
}

// NewPlant builds a plant that advances by the given step per loop iteration.
func NewPlant(dt time.Duration) *Plant {
	return &Plant{dt: dt}
}

// Write implements controller.Actuator.
func (p *Plant) Write(value float64) { p.command = value }

// SetEnabled implements controller.Actuator.
func (p *Plant) SetEnabled(on bool) { p.enabled = on }

// Position returns the current simulated position.
func (p *Plant) Position() float64 { return p.position }

// Command returns the last commanded output.
func (p *Plant) Command() float64 { return p.command }

// Step integrates the commanded output over one time step.
func (p *Plant) Step() {
	if p.enabled {
		p.position += p.command * p.dt.Seconds()
	}
}

// simOpMode is the OpMode the app runs: it owns the plants and advances them
// once per main-loop iteration.
type simOpMode struct {
	def    *config.OpModeDef
	plants []*Plant
}

func newSimOpMode(def *config.OpModeDef, plants []*Plant) *simOpMode {
	return &simOpMode{def: def, plants: plants}
}

// Name implements opmode.Named.
func (s *simOpMode) Name() string { return s.def.Name }

// Flags implements opmode.Flagged.
func (s *simOpMode) Flags() []feature.Flag {
	flags := make([]feature.Flag, len(s.def.Flags))
	for i, f := range s.def.Flags {
		flags[i] = feature.Flag(f)
	}
	return flags
}

func (s *simOpMode) Init(*opmode.Cycle) error {
	for _, p := range s.plants {
		p.SetEnabled(true)
	}
	return nil
}

func (s *simOpMode) InitLoop(*opmode.Cycle) error { return nil }

func (s *simOpMode) Start(*opmode.Cycle) error { return nil }

func (s *simOpMode) Loop(*opmode.Cycle) error {
	for _, p := range s.plants {
		p.Step()
	}
	return nil
}

func (s *simOpMode) Stop(*opmode.Cycle) error {
	for _, p := range s.plants {
		p.SetEnabled(false)
	}
	return nil
}
