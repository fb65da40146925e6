// Package config loads and validates pgssup settings.
//
// Settings come from repository defaults, optionally overlaid by a TOML file.
// Command line flags are applied by the CLI after Load returns, so the values
// here are only the baseline for a run.
package config
