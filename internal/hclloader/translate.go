package hclloader

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/opcycle/internal/config"
)

// translate converts the HCL-specific schema into the agnostic model.
func (l *Loader) translate(root *rootSchema) (*config.Model, error) {
	model := &config.Model{}

	if root.OpMode != nil {
		om := &config.OpModeDef{
			Name:      root.OpMode.Name,
			Flags:     root.OpMode.Flags,
			InitLoops: 1,
			MainLoops: 1,
		}
		if root.OpMode.InitLoops != nil {
			om.InitLoops = *root.OpMode.InitLoops
		}
		if root.OpMode.MainLoops != nil {
			om.MainLoops = *root.OpMode.MainLoops
		}
		model.OpMode = om
	}

	for _, c := range root.Controllers {
		target, err := evalNumber(c.Target, 0)
		if err != nil {
			return nil, fmt.Errorf("controller %q: target: %w", c.Name, err)
		}
		def := &config.ControllerDef{
			Name:          c.Name,
			Target:        target,
			AutoUpdate:    true,
			RequiredFlags: c.RequiresFlags,
		}
		if c.AutoUpdate != nil {
			def.AutoUpdate = *c.AutoUpdate
		}
		for _, calc := range c.Calculators {
			cd, err := l.translateCalculator(calc)
			if err != nil {
				return nil, fmt.Errorf("controller %q: %w", c.Name, err)
			}
			def.Calculators = append(def.Calculators, cd)
		}
		model.Controllers = append(model.Controllers, def)
	}

	return model, nil
}

func (l *Loader) translateCalculator(calc *calculatorSchema) (*config.CalculatorDef, error) {
	gain, err := evalNumber(calc.Gain, 0)
	if err != nil {
		return nil, fmt.Errorf("calculator %q: gain: %w", calc.Kind, err)
	}
	lower, err := evalNumber(calc.Lower, 0)
	if err != nil {
		return nil, fmt.Errorf("calculator %q: lower: %w", calc.Kind, err)
	}
	upper, err := evalNumber(calc.Upper, 0)
	if err != nil {
		return nil, fmt.Errorf("calculator %q: upper: %w", calc.Kind, err)
	}
	return &config.CalculatorDef{
		Kind:  calc.Kind,
		Gain:  gain,
		Lower: lower,
		Upper: upper,
	}, nil
}

// evalNumber evaluates an HCL expression to a float64, going through cty so
// that anything convertible to a number (literals, arithmetic) is accepted.
// A nil expression yields the fallback.
func evalNumber(expr hcl.Expression, fallback float64) (float64, error) {
	if expr == nil {
		return fallback, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return 0, diags
	}
	if val.IsNull() {
		return fallback, nil
	}
	val, err := convert.Convert(val, cty.Number)
	if err != nil {
		return 0, fmt.Errorf("not a number: %w", err)
	}
	var out float64
	if err := gocty.FromCtyValue(val, &out); err != nil {
		return 0, err
	}
	return out, nil
}
