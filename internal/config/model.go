package config

import "fmt"

// Model is the unified representation of one simulation run: the OpMode shape
// and the controller features attached to it.
type Model struct {
	OpMode      *OpModeDef
	Controllers []*ControllerDef
}

// OpModeDef describes the simulated OpMode: its name, the flags its cycle
// context carries, and how many iterations of the repeatable phases to run.
type OpModeDef struct {
	Name      string
	Flags     []string
	InitLoops int
	MainLoops int
}

// ControllerDef describes one controller feature.
type ControllerDef struct {
	Name          string
	Target        float64
	AutoUpdate    bool
	RequiredFlags []string
	Calculators   []*CalculatorDef
}

// CalculatorDef describes one calculator sub-component of a controller.
// Kind is one of "proportional", "integral", "derivative". Lower and Upper
// bound the integral accumulator and are ignored by the other kinds.
type CalculatorDef struct {
	Kind  string
	Gain  float64
	Lower float64
	Upper float64
}

// Validate checks the model for structural errors common to all formats.
func (m *Model) Validate() error {
	if m.OpMode == nil {
		return fmt.Errorf("config: missing opmode block")
	}
	if m.OpMode.Name == "" {
		return fmt.Errorf("config: opmode name must not be empty")
	}
	if m.OpMode.InitLoops < 0 || m.OpMode.MainLoops < 0 {
		return fmt.Errorf("config: loop counts must not be negative")
	}
	for _, c := range m.Controllers {
		if c.Name == "" {
			return fmt.Errorf("config: controller name must not be empty")
		}
		for _, calc := range c.Calculators {
			switch calc.Kind {
			case "proportional", "integral", "derivative":
			default:
				return fmt.Errorf("config: controller %q: unknown calculator kind %q", c.Name, calc.Kind)
			}
			if calc.Kind == "integral" && calc.Lower > calc.Upper {
				return fmt.Errorf("config: controller %q: integral bounds inverted (%g > %g)", c.Name, calc.Lower, calc.Upper)
			}
		}
	}
	return nil
}
