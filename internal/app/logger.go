package app

import (
	"io"
	"log/slog"
)

// newLogger builds the application's isolated logger. It never installs
// itself as the process-global default, so cycle logs stay on the writer the
// caller chose; per-cycle correlation attrs are attached later by the
// registrar. The level comes pre-parsed from Config.Level.
func newLogger(level slog.Level, format string, outW io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
