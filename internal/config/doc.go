// Package config defines the format-agnostic configuration model for a
// simulated OpMode run, and the Loader interface that format-specific
// packages (hclloader, tomlloader) implement. Keeping the model independent
// of any one syntax lets the application accept multiple configuration
// formats behind a single seam.
package config
