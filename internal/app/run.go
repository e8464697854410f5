package app

import (
	"context"
	"fmt"

	"github.com/vk/opcycle/internal/ctxlog"
	"github.com/vk/opcycle/internal/opmode"
)

// Run executes the configured number of cycles. Features are re-registered
// before every cycle: a cycle end clears the active set, and the registrar
// never re-queues dropped features on its own.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	driver := opmode.NewDriver(a.reg,
		opmode.WithInitLoops(a.model.OpMode.InitLoops),
		opmode.WithMainLoops(a.model.OpMode.MainLoops),
	)
	om := newSimOpMode(a.model.OpMode, a.plants)

	for i := 0; i < appConfig.Cycles; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, ref := range a.refs {
			a.reg.Register(ctx, ref)
		}
		a.logger.Info("Running cycle.", "cycle", i+1, "of", appConfig.Cycles)
		if err := driver.Run(ctx, om); err != nil {
			return fmt.Errorf("cycle %d: %w", i+1, err)
		}
		a.report(i + 1)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// report logs where each plant ended up relative to its controller's target.
func (a *App) report(cycle int) {
	for i, ctrl := range a.controllers {
		plant := a.plants[i]
		a.logger.Info("Controller state after cycle.",
			"cycle", cycle,
			"controller", ctrl.String(),
			"target", ctrl.Target(),
			"position", plant.Position(),
			"busy", ctrl.IsBusy(0.05),
		)
	}
}
