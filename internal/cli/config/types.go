// Package config provides configuration management for the erd CLI.
//
// This package extends the shared workspace types from internal/config
// with CLI-specific fields and functionality. The shared types are
// re-exported here via type aliases for convenience.
package config

import (
	sharedcfg "github.com/leapstack-labs/erd/internal/config"
)

// LayoutConfig is an alias for the shared layout configuration.
type LayoutConfig = sharedcfg.LayoutConfig

// DSLConfig is an alias for the shared DSL configuration.
type DSLConfig = sharedcfg.DSLConfig

// WatchConfig is an alias for the shared watch configuration.
type WatchConfig = sharedcfg.WatchConfig

// MigrateConfig is an alias for the shared migrate configuration.
type MigrateConfig = sharedcfg.MigrateConfig

// Config holds all CLI configuration options.
type Config struct {
	Layout       LayoutConfig  `koanf:"layout"`
	DSL          DSLConfig     `koanf:"dsl"`
	Watch        WatchConfig   `koanf:"watch"`
	Migrate      MigrateConfig `koanf:"migrate"`
	StatePath    string        `koanf:"state_path"`
	Verbose      bool          `koanf:"verbose"`
	LogLevel     string        `koanf:"log_level"`
	OutputFormat string        `koanf:"output"`

	// ProjectRoot is the directory the config was resolved against.
	ProjectRoot string `koanf:"-"`
}

// Workspace returns the shared portion of the config.
func (c *Config) Workspace() sharedcfg.WorkspaceConfig {
	return sharedcfg.WorkspaceConfig{
		Layout:  c.Layout,
		DSL:     c.DSL,
		Watch:   c.Watch,
		Migrate: c.Migrate,
	}
}

// Default configuration values.
const (
	DefaultStateFile = ".erd/state.db"
	DefaultLogLevel  = "warn"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// Default returns a Config populated with default values.
func Default() *Config {
	ws := sharedcfg.WorkspaceConfig{DSL: sharedcfg.DSLConfig{IncludeHeader: sharedcfg.DefaultIncludeHeader}}
	sharedcfg.ApplyDefaults(&ws)
	return &Config{
		Layout:       ws.Layout,
		DSL:          ws.DSL,
		Watch:        ws.Watch,
		Migrate:      ws.Migrate,
		StatePath:    DefaultStateFile,
		LogLevel:     DefaultLogLevel,
		OutputFormat: DefaultOutput,
	}
}
