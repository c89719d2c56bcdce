package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/erd/pkg/schema"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	var (
		outPath  string
		format   string
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-import a DSL file whenever it changes",
		Long: `Watch a DSL file and write its schema envelope each time it is saved.

Bursts of file events are debounced (watch.debounce). Syntax errors are
reported and the previous output is kept. Stop with Ctrl+C.`,
		Example: `  # Keep schema.json in sync with schema.erd
  erd watch schema.erd --out schema.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd, args[0], outPath, format, debounce)
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Output file (default: input name with .json)")
	cmd.Flags().StringVar(&format, "format", "json", "Envelope format (json|yaml)")
	cmd.Flags().DurationVar(&debounce, "debounce", 0, "Quiet period before rebuilding (default from watch.debounce)")

	return cmd
}

// defaultWatchOutput swaps the input extension for the envelope format.
func defaultWatchOutput(input, format string) string {
	ext := ".json"
	if format == sourceYAML {
		ext = ".yaml"
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ext
}

func runWatch(ctx context.Context, cmd *cobra.Command, input, outPath, format string, debounce time.Duration) error {
	cctx := NewCommandContext(cmd)
	r := cctx.Renderer

	if outPath == "" {
		outPath = defaultWatchOutput(input, format)
	}
	if debounce <= 0 {
		debounce = cctx.Cfg.Watch.Debounce
	}
	absInput, err := filepath.Abs(input)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", input, err)
	}
	if abs, err := filepath.Abs(outPath); err == nil && abs == absInput {
		return fmt.Errorf("output %s would overwrite the watched file", outPath)
	}

	var mu sync.Mutex
	rebuild := func() {
		mu.Lock()
		defer mu.Unlock()
		if err := importOnce(cmd, cctx, input, outPath, format); err != nil {
			r.Error(err.Error())
			return
		}
		r.Success(fmt.Sprintf("Wrote %s", outPath))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Editors often replace files on save, so watch the directory.
	if err := watcher.Add(filepath.Dir(absInput)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", input, err)
	}

	rebuild()
	r.Muted(fmt.Sprintf("Watching %s (Ctrl+C to stop)", input))

	watchLoop(ctx, watcher, absInput, debounce, cctx.Logger, rebuild)
	return nil
}

// watchLoop runs rebuild after each debounced burst of writes to target.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, target string, debounce time.Duration, logger *slog.Logger, rebuild func()) {
	// Debounce timer
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			// Only handle write/create events for the watched file
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if abs, err := filepath.Abs(event.Name); err != nil || abs != target {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounce, func() {
				logger.Debug("change detected", slog.String("file", filepath.Base(target)))
				rebuild()
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error", slog.Any("error", err))
		}
	}
}

// importOnce parses input and writes its envelope to outPath.
func importOnce(cmd *cobra.Command, cctx *CommandContext, input, outPath, format string) error {
	d, _, err := loadDiagram(cmd, cctx, input)
	if err != nil {
		return err
	}
	data, err := marshalEnvelope(schema.Encode(*d, schema.WithLogger(cctx.Logger)), format)
	if err != nil {
		return err
	}
	return writeOutput(cmd, outPath, data)
}
