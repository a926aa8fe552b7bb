// Package config loads subcue's TOML configuration.
//
// Load applies defaults, decodes the file (when one exists), expands paths,
// pulls secrets from the environment and validates the result. Command
// flags override individual fields after loading.
package config
