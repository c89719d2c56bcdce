package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "erd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("state", "", "state database")
	flags.String("log-level", "", "log level")
	flags.StringP("output", "o", "", "output format")
	flags.BoolP("verbose", "v", false, "verbose output")
	return flags
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()

	cfgPath := writeConfig(t, "{}\n")
	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.InDelta(t, 400.0, cfg.Layout.HorizontalSpacing, 0)
	assert.InDelta(t, 500.0, cfg.Layout.VerticalSpacing, 0)
	assert.True(t, cfg.DSL.IncludeHeader)
	assert.Equal(t, 150*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, 4, cfg.Migrate.Concurrency)
	assert.Equal(t, []string{".json"}, cfg.Migrate.Extensions)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, filepath.Dir(cfgPath), cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(filepath.Dir(cfgPath), DefaultStateFile), cfg.StatePath)
	assert.Equal(t, cfgPath, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()

	cfgPath := writeConfig(t, `layout:
  horizontal_spacing: 250
  vertical_spacing: 320.5
dsl:
  include_header: false
watch:
  debounce: 2s
migrate:
  concurrency: 8
  extensions: [".erd.json"]
state_path: /tmp/erd-state.db
log_level: debug
output: json
`)
	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.InDelta(t, 250.0, cfg.Layout.HorizontalSpacing, 0)
	assert.InDelta(t, 320.5, cfg.Layout.VerticalSpacing, 0)
	assert.False(t, cfg.DSL.IncludeHeader)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
	assert.Equal(t, 8, cfg.Migrate.Concurrency)
	assert.Equal(t, []string{".erd.json"}, cfg.Migrate.Extensions)
	assert.Equal(t, "/tmp/erd-state.db", cfg.StatePath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.OutputFormat)

	opts := cfg.Layout.Options()
	assert.InDelta(t, 250.0, opts.HorizontalSpacing, 0)
	assert.InDelta(t, 320.5, opts.VerticalSpacing, 0)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	ResetConfig()

	cfgPath := writeConfig(t, "layout: [unterminated\n")
	_, err := LoadConfig(cfgPath, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{name: "zero spacing", content: "layout:\n  horizontal_spacing: -1\n", errSubstr: "horizontal_spacing"},
		{name: "bad concurrency", content: "migrate:\n  concurrency: 0\n", errSubstr: "concurrency"},
		{name: "bad log level", content: "log_level: loud\n", errSubstr: "unknown log level"},
		{name: "bad output", content: "output: xml\n", errSubstr: "unknown output format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			_, err := LoadConfig(writeConfig(t, tt.content), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestLoadConfig_EnvPrecedenceOverFile(t *testing.T) {
	ResetConfig()

	cfgPath := writeConfig(t, "log_level: info\nlayout:\n  vertical_spacing: 100\n")
	t.Setenv("ERD_LOG_LEVEL", "error")
	t.Setenv("ERD_LAYOUT__VERTICAL_SPACING", "640")
	t.Setenv("ERD_MIGRATE__EXTENSIONS", ".a,.b")

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.LogLevel, "env var should override config file")
	assert.InDelta(t, 640.0, cfg.Layout.VerticalSpacing, 0)
	assert.Equal(t, []string{".a", ".b"}, cfg.Migrate.Extensions)
}

func TestLoadConfig_FlagPrecedence(t *testing.T) {
	ResetConfig()

	cfgPath := writeConfig(t, "output: markdown\n")
	t.Setenv("ERD_OUTPUT", "text")

	flags := newFlags()
	require.NoError(t, flags.Set("output", "json"))
	require.NoError(t, flags.Set("log-level", "debug"))

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.OutputFormat, "flag value should override config file and env var")
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_FlagNotSetUsesEnv(t *testing.T) {
	ResetConfig()

	cfgPath := writeConfig(t, "output: markdown\n")
	t.Setenv("ERD_OUTPUT", "text")

	// Flags declared but never set keep Changed false.
	cfg, err := LoadConfig(cfgPath, newFlags())
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.OutputFormat, "env var should be used when flag is not set")
}

func TestLoadConfig_StateFlag(t *testing.T) {
	ResetConfig()

	cfgPath := writeConfig(t, "state_path: from_file.db\n")
	flags := newFlags()
	require.NoError(t, flags.Set("state", ":memory:"))

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.StatePath)
}

func TestLoadConfig_RelativeStatePath(t *testing.T) {
	ResetConfig()

	cfgPath := writeConfig(t, "state_path: data/erd.db\n")
	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(cfgPath), "data", "erd.db"), cfg.StatePath)
}

func TestConfig_Validate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, Default().Validate())
	})

	t.Run("negative debounce", func(t *testing.T) {
		cfg := Default()
		cfg.Watch.Debounce = -time.Second
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "watch.debounce")
	})
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "", want: slog.LevelWarn},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "trace", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLogLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetLogger(t *testing.T) {
	t.Run("fallback discards", func(t *testing.T) {
		logger := GetLogger(context.Background())
		require.NotNil(t, logger)
		assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
	})

	t.Run("from context", func(t *testing.T) {
		want := slog.New(slog.DiscardHandler)
		ctx := context.WithValue(context.Background(), LoggerKey(), want)
		assert.Same(t, want, GetLogger(ctx))
	})
}
