// Package hclloader implements config.Loader for HCL files.
package hclloader

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/opcycle/internal/config"
	"github.com/vk/opcycle/internal/ctxlog"
)

// rootSchema mirrors the top-level HCL document.
type rootSchema struct {
	OpMode      *opModeSchema       `hcl:"opmode,block"`
	Controllers []*controllerSchema `hcl:"controller,block"`
}

type opModeSchema struct {
	Name      string   `hcl:"name,label"`
	Flags     []string `hcl:"flags,optional"`
	InitLoops *int     `hcl:"init_loops,optional"`
	MainLoops *int     `hcl:"main_loops,optional"`
}

type controllerSchema struct {
	Name          string              `hcl:"name,label"`
	Target        hcl.Expression      `hcl:"target"`
	AutoUpdate    *bool               `hcl:"auto_update,optional"`
	RequiresFlags []string            `hcl:"requires_flags,optional"`
	Calculators   []*calculatorSchema `hcl:"calculator,block"`
}

type calculatorSchema struct {
	Kind  string         `hcl:"kind,label"`
	Gain  hcl.Expression `hcl:"gain"`
	Lower hcl.Expression `hcl:"lower,optional"`
	Upper hcl.Expression `hcl:"upper,optional"`
}

// Loader parses HCL configuration files into the agnostic model.
type Loader struct{}

// NewLoader creates a new HCL loader.
func NewLoader() *Loader { return &Loader{} }

// Load implements config.Loader.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing HCL configuration.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %w", path, diags)
	}

	var root rootSchema
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("decoding %s: %w", path, diags)
	}

	model, err := l.translate(&root)
	if err != nil {
		return nil, err
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("HCL configuration loaded.", "controllers", len(model.Controllers))
	return model, nil
}
