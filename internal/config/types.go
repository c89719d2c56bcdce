// Package config provides shared workspace configuration types for erd.
// It is decoupled from CLI concerns so tools other than the command line can
// read the same erd.yaml.
package config

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/erd/pkg/layout"
)

// LayoutConfig holds auto-layout spacing.
type LayoutConfig struct {
	HorizontalSpacing float64 `koanf:"horizontal_spacing"`
	VerticalSpacing   float64 `koanf:"vertical_spacing"`
}

// Options converts the config into layout options.
func (c LayoutConfig) Options() layout.Options {
	return layout.Options{
		HorizontalSpacing: c.HorizontalSpacing,
		VerticalSpacing:   c.VerticalSpacing,
	}
}

// Validate checks that spacings are positive.
func (c LayoutConfig) Validate() error {
	if c.HorizontalSpacing <= 0 {
		return fmt.Errorf("layout.horizontal_spacing must be positive, got %v", c.HorizontalSpacing)
	}
	if c.VerticalSpacing <= 0 {
		return fmt.Errorf("layout.vertical_spacing must be positive, got %v", c.VerticalSpacing)
	}
	return nil
}

// DSLConfig holds DSL export settings.
type DSLConfig struct {
	// IncludeHeader writes the "# Generated at" comment block on export.
	IncludeHeader bool `koanf:"include_header"`
}

// WatchConfig holds settings for the watch command.
type WatchConfig struct {
	Debounce time.Duration `koanf:"debounce"`
}

// MigrateConfig holds settings for the migrate command.
type MigrateConfig struct {
	// Concurrency bounds how many files are migrated at once.
	Concurrency int `koanf:"concurrency"`
	// Extensions lists the file extensions picked up when a directory is given.
	Extensions []string `koanf:"extensions"`
}

// WorkspaceConfig holds the settings shared by every erd tool.
type WorkspaceConfig struct {
	Layout  LayoutConfig  `koanf:"layout"`
	DSL     DSLConfig     `koanf:"dsl"`
	Watch   WatchConfig   `koanf:"watch"`
	Migrate MigrateConfig `koanf:"migrate"`
}
