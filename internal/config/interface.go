package config

import "context"

// Loader is the interface for a format-specific configuration loader. Load
// reads the file at path, translates it into the format-agnostic model, and
// validates it.
type Loader interface {
	Load(ctx context.Context, path string) (*Model, error)
}
