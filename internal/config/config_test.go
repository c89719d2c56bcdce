package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromDir_NoConfig(t *testing.T) {
	cfg, err := LoadFromDir(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	content := "layout:\n  horizontal_spacing: 120\nwatch:\n  debounce: 1s\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileNameAlt), []byte(content), 0600))

	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.InDelta(t, 120.0, cfg.Layout.HorizontalSpacing, 0)
	assert.InDelta(t, DefaultVerticalSpacing, cfg.Layout.VerticalSpacing, 0)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
	assert.True(t, cfg.DSL.IncludeHeader)
	assert.Equal(t, DefaultMigrateConcurrency, cfg.Migrate.Concurrency)
}

func TestFindWorkspaceRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0750))
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte("{}\n"), 0600))

	assert.Equal(t, root, FindWorkspaceRoot(nested))
	assert.Equal(t, filepath.Join(root, ConfigFileName), FindConfigFile(root))
	assert.Empty(t, FindConfigFile(nested))
}

func TestApplyDefaults(t *testing.T) {
	var cfg WorkspaceConfig
	ApplyDefaults(&cfg)

	assert.InDelta(t, DefaultHorizontalSpacing, cfg.Layout.HorizontalSpacing, 0)
	assert.InDelta(t, DefaultVerticalSpacing, cfg.Layout.VerticalSpacing, 0)
	assert.Equal(t, DefaultWatchDebounce, cfg.Watch.Debounce)
	assert.Equal(t, DefaultMigrateConcurrency, cfg.Migrate.Concurrency)
	assert.Equal(t, DefaultMigrateExtensions, cfg.Migrate.Extensions)
	assert.NoError(t, cfg.Layout.Validate())

	ApplyDefaults(nil)
}
