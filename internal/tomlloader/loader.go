// Package tomlloader implements config.Loader for TOML files, as a second
// syntax behind the same format-agnostic model the HCL loader targets.
package tomlloader

import (
	"context"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/vk/opcycle/internal/config"
	"github.com/vk/opcycle/internal/ctxlog"
)

type rootSchema struct {
	OpMode      *opModeSchema      `toml:"opmode"`
	Controllers []controllerSchema `toml:"controller"`
}

type opModeSchema struct {
	Name      string   `toml:"name"`
	Flags     []string `toml:"flags"`
	InitLoops *int     `toml:"init_loops"`
	MainLoops *int     `toml:"main_loops"`
}

type controllerSchema struct {
	Name          string             `toml:"name"`
	Target        float64            `toml:"target"`
	AutoUpdate    *bool              `toml:"auto_update"`
	RequiresFlags []string           `toml:"requires_flags"`
	Calculators   []calculatorSchema `toml:"calculator"`
}

type calculatorSchema struct {
	Kind  string  `toml:"kind"`
	Gain  float64 `toml:"gain"`
	Lower float64 `toml:"lower"`
	Upper float64 `toml:"upper"`
}

// Loader parses TOML configuration files into the agnostic model.
type Loader struct{}

// NewLoader creates a new TOML loader.
func NewLoader() *Loader { return &Loader{} }

// Load implements config.Loader.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing TOML configuration.", "path", path)

	var root rootSchema
	if _, err := toml.DecodeFile(path, &root); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	model := l.translate(&root)
	if err := model.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("TOML configuration loaded.", "controllers", len(model.Controllers))
	return model, nil
}

// translate converts the TOML-specific schema into the agnostic model.
func (l *Loader) translate(root *rootSchema) *config.Model {
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
		def := &config.ControllerDef{
			Name:          c.Name,
			Target:        c.Target,
			AutoUpdate:    true,
			RequiredFlags: c.RequiresFlags,
		}
		if c.AutoUpdate != nil {
			def.AutoUpdate = *c.AutoUpdate
		}
		for _, calc := range c.Calculators {
			def.Calculators = append(def.Calculators, &config.CalculatorDef{
				Kind:  calc.Kind,
				Gain:  calc.Gain,
				Lower: calc.Lower,
				Upper: calc.Upper,
			})
		}
		model.Controllers = append(model.Controllers, def)
	}

	return model
}
