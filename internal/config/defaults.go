package config

import (
	"time"

	"github.com/leapstack-labs/erd/pkg/layout"
)

// Default configuration values.
const (
	DefaultHorizontalSpacing  = layout.DefaultHorizontalSpacing
	DefaultVerticalSpacing    = layout.DefaultVerticalSpacing
	DefaultIncludeHeader      = true
	DefaultWatchDebounce      = 150 * time.Millisecond
	DefaultMigrateConcurrency = 4
)

// DefaultMigrateExtensions are the files migrate picks up from a directory.
var DefaultMigrateExtensions = []string{".json"}

// Defaults returns the default values as a flat koanf key map.
func Defaults() map[string]any {
	return map[string]any{
		"layout.horizontal_spacing": DefaultHorizontalSpacing,
		"layout.vertical_spacing":   DefaultVerticalSpacing,
		"dsl.include_header":        DefaultIncludeHeader,
		"watch.debounce":            DefaultWatchDebounce.String(),
		"migrate.concurrency":       DefaultMigrateConcurrency,
		"migrate.extensions":        DefaultMigrateExtensions,
	}
}

// ApplyDefaults fills zero numeric values of a WorkspaceConfig. Booleans
// are left alone; they get their defaults from Defaults during loading.
func ApplyDefaults(c *WorkspaceConfig) {
	if c == nil {
		return
	}
	if c.Layout.HorizontalSpacing == 0 {
		c.Layout.HorizontalSpacing = DefaultHorizontalSpacing
	}
	if c.Layout.VerticalSpacing == 0 {
		c.Layout.VerticalSpacing = DefaultVerticalSpacing
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = DefaultWatchDebounce
	}
	if c.Migrate.Concurrency <= 0 {
		c.Migrate.Concurrency = DefaultMigrateConcurrency
	}
	if len(c.Migrate.Extensions) == 0 {
		c.Migrate.Extensions = append([]string{}, DefaultMigrateExtensions...)
	}
}
