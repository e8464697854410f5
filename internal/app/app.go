package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/vk/opcycle/internal/config"
	"github.com/vk/opcycle/internal/controller"
	"github.com/vk/opcycle/internal/ctxlog"
	"github.com/vk/opcycle/internal/feature"
	"github.com/vk/opcycle/internal/registrar"
)

// plantStep is the simulated integration step per main-loop iteration.
const plantStep = 10 * time.Millisecond

// App encapsulates the application's dependencies, configuration, and
// lifecycle. It holds the strong references to every feature it builds.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	model  *config.Model
	reg    *registrar.Registrar

	controllers []*controller.Controller
	plants      []*Plant
	refs        []feature.Ref
}

// New is the constructor for the main application. It builds an isolated
// logger, loads the configuration through the given loader, and constructs
// the registrar and every configured feature.
func New(outW io.Writer, appConfig *Config, loader config.Loader) (*App, error) {
	logger := newLogger(appConfig.Level(), appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, appConfig.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	logger.Debug("Configuration loaded into unified model.", "opMode", model.OpMode.Name)

	a := &App{
		outW:   outW,
		logger: logger,
		model:  model,
		reg:    registrar.New(),
	}
	if err := a.buildFeatures(); err != nil {
		return nil, err
	}
	logger.Debug("Features constructed.", "count", len(a.controllers))
	return a, nil
}

// Registrar returns the application's registrar. This is primarily for testing.
func (a *App) Registrar() *registrar.Registrar { return a.reg }

// buildFeatures turns every controller definition into a live controller
// feature wired to its own simulated plant.
func (a *App) buildFeatures() error {
	for _, def := range a.model.Controllers {
		plant := NewPlant(plantStep)

		var calcs []controller.Calculator
		for _, cd := range def.Calculators {
			calc, err := buildCalculator(cd, plant.Position)
			if err != nil {
				return fmt.Errorf("controller %q: %w", def.Name, err)
			}
			calcs = append(calcs, calc)
		}

		opts := []controller.Option{
			controller.WithTarget(def.Target),
			controller.WithAutoUpdate(def.AutoUpdate),
			controller.WithCalculators(calcs...),
		}
		if len(def.RequiredFlags) > 0 {
			flags := make([]feature.Flag, len(def.RequiredFlags))
			for i, f := range def.RequiredFlags {
				flags[i] = feature.Flag(f)
			}
			opts = append(opts, controller.WithDependencies(feature.RequiresAllFlags(flags...)))
		}

		ctrl := controller.New(def.Name, plant, opts...)
		a.controllers = append(a.controllers, ctrl)
		a.plants = append(a.plants, plant)
		a.refs = append(a.refs, feature.NewRef(ctrl))
	}
	return nil
}

func buildCalculator(def *config.CalculatorDef, m controller.Measurement) (controller.Calculator, error) {
	switch def.Kind {
	case "proportional":
		return controller.NewProportional(m, def.Gain), nil
	case "integral":
		return controller.NewIntegral(m, def.Gain, def.Lower, def.Upper), nil
	case "derivative":
		return controller.NewDerivative(m, def.Gain), nil
	}
	return nil, fmt.Errorf("unknown calculator kind %q", def.Kind)
}
