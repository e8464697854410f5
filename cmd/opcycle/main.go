package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/opcycle/internal/app"
	"github.com/vk/opcycle/internal/cli"
	"github.com/vk/opcycle/internal/config"
	"github.com/vk/opcycle/internal/hclloader"
	"github.com/vk/opcycle/internal/tomlloader"
)

// main is the entrypoint for the opcycle application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	loader, err := loaderFor(appConfig.ConfigPath)
	if err != nil {
		return &cli.ExitError{Code: 2, Message: err.Error()}
	}

	opcycleApp, err := app.New(outW, appConfig, loader)
	if err != nil {
		return err
	}

	return opcycleApp.Run(context.Background(), appConfig)
}

// loaderFor picks the configuration loader matching the file extension.
func loaderFor(path string) (config.Loader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return hclloader.NewLoader(), nil
	case ".toml":
		return tomlloader.NewLoader(), nil
	}
	return nil, fmt.Errorf("unsupported config format %q: expected .hcl or .toml", filepath.Ext(path))
}
