package commands

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/erd/internal/cli/output"
	"github.com/leapstack-labs/erd/pkg/schema"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand() *cobra.Command {
	var (
		write       bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "migrate <file|dir>...",
		Short: "Upgrade stored diagrams to the current schema version",
		Long: fmt.Sprintf(`Decode stored diagrams and re-encode them at schema version %d.

Directories are searched recursively for files with the configured
extensions (migrate.extensions). Files are processed concurrently, bounded by
migrate.concurrency. Without --write the command only reports what it would do.

Envelopes older than version %d cannot be read by this release and are
reported as failed.`, schema.CurrentVersion, schema.MinSupportedVersion),
		Example: `  # Report which files need migrating
  erd migrate diagrams/

  # Rewrite them in place
  erd migrate diagrams/ --write

  # Machine-readable report
  erd migrate a.json b.json --output json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, args, write, concurrency)
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "Rewrite migrated files in place")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 0, "Files processed at once (default from migrate.concurrency)")

	return cmd
}

func runMigrate(cmd *cobra.Command, args []string, write bool, concurrency int) error {
	cctx := NewCommandContext(cmd)
	r := cctx.Renderer

	if concurrency <= 0 {
		concurrency = cctx.Cfg.Migrate.Concurrency
	}

	files, err := collectFiles(args, cctx.Cfg.Migrate.Extensions)
	if err != nil {
		return err
	}

	results, err := migrateFiles(cmd.Context(), cctx.Logger, files, write, concurrency)
	if err != nil {
		return err
	}

	report := output.MigrateOutput{Files: results, Summary: summarize(results)}
	switch r.EffectiveMode() {
	case output.ModeJSON:
		if err := r.JSON(report); err != nil {
			return err
		}
	case output.ModeMarkdown:
		migrateMarkdown(r, report, write)
	default:
		migrateText(r, report, write)
	}

	if report.Summary.Failed > 0 {
		return fmt.Errorf("%d of %d files failed to migrate", report.Summary.Failed, report.Summary.Total)
	}
	return nil
}

// collectFiles expands directories into the files with a matching extension.
func collectFiles(args []string, extensions []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !hasExtension(path, extensions) {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", arg, err)
		}
	}
	return files, nil
}

func hasExtension(path string, extensions []string) bool {
	return slices.ContainsFunc(extensions, func(ext string) bool {
		return strings.HasSuffix(strings.ToLower(path), strings.ToLower(ext))
	})
}

// migrateFiles processes files concurrently. Per-file problems are reported
// in the results; only cancellation aborts the run.
func migrateFiles(ctx context.Context, logger *slog.Logger, files []string, write bool, concurrency int) ([]output.MigrateResult, error) {
	results := make([]output.MigrateResult, len(files))

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)

	for i, path := range files {
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			results[i] = migrateFile(logger, path, write)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("migration interrupted: %w", err)
	}
	return results, nil
}

func migrateFile(logger *slog.Logger, path string, write bool) output.MigrateResult {
	res := output.MigrateResult{Path: path}

	data, err := os.ReadFile(path) //nolint:gosec // reading user-named files is the point
	if err != nil {
		res.Status = output.StatusFailed
		res.Error = err.Error()
		return res
	}

	kind, version := schema.Detect(data)
	res.Kind = kind.String()
	res.FromVersion = version

	d, err := schema.DecodeJSON(data, schema.WithLogger(logger))
	switch {
	case err != nil:
		res.Status = output.StatusFailed
		res.Error = err.Error()
		return res
	case d == nil:
		res.Status = output.StatusSkipped
		res.Error = errNotADiagram.Error()
		return res
	}

	res.ToVersion = schema.CurrentVersion
	if kind == schema.KindEnvelope && version == schema.CurrentVersion {
		res.Status = output.StatusCurrent
		return res
	}

	res.Status = output.StatusMigrated
	if !write {
		return res
	}

	out, err := marshalEnvelope(schema.Encode(*d, schema.WithLogger(logger)), sourceJSON)
	if err == nil {
		err = writeFileAtomic(path, out)
	}
	if err != nil {
		res.Status = output.StatusFailed
		res.Error = err.Error()
		return res
	}
	logger.Info("migrated file", slog.String("path", path),
		slog.Int("from", version), slog.Int("to", schema.CurrentVersion))
	return res
}

func summarize(results []output.MigrateResult) output.MigrateSummary {
	s := output.MigrateSummary{Total: len(results)}
	for _, res := range results {
		switch res.Status {
		case output.StatusMigrated:
			s.Migrated++
		case output.StatusCurrent:
			s.Current++
		case output.StatusSkipped:
			s.Skipped++
		case output.StatusFailed:
			s.Failed++
		}
	}
	return s
}

func migrateRows(report output.MigrateOutput) [][]string {
	rows := make([][]string, 0, len(report.Files))
	for _, res := range report.Files {
		to := ""
		if res.ToVersion > 0 {
			to = strconv.Itoa(res.ToVersion)
		}
		rows = append(rows, []string{
			res.Path,
			output.Title(res.Kind),
			strconv.Itoa(res.FromVersion),
			to,
			output.Title(res.Status),
			res.Error,
		})
	}
	return rows
}

var migrateHeader = []string{"File", "Kind", "From", "To", "Status", "Detail"}

// migrateText outputs the report as a styled table.
func migrateText(r *output.Renderer, report output.MigrateOutput, write bool) {
	styles := r.Styles()

	r.Header(1, "Schema Migration")
	output.Table(r.Writer(), false, migrateHeader, migrateRows(report))
	r.Println("")

	s := report.Summary
	summary := fmt.Sprintf("%d files: %d migrated, %d current, %d skipped, %d failed",
		s.Total, s.Migrated, s.Current, s.Skipped, s.Failed)
	if s.Failed > 0 {
		r.Println(styles.StatusFailed.Render(summary))
	} else {
		r.Println(styles.StatusSuccess.Render(summary))
	}
	if !write && s.Migrated > 0 {
		r.Println(styles.Muted.Render("Dry run: re-run with --write to rewrite files"))
	}
}

// migrateMarkdown outputs the report in markdown format.
func migrateMarkdown(r *output.Renderer, report output.MigrateOutput, write bool) {
	r.Println(output.FormatHeader(1, "Schema Migration"))
	r.Println("")
	output.Table(r.Writer(), true, migrateHeader, migrateRows(report))
	r.Println("")

	s := report.Summary
	r.Println(output.FormatHeader(2, "Summary"))
	r.Println(output.FormatKeyValue("Total", strconv.Itoa(s.Total)))
	r.Println(output.FormatKeyValue("Migrated", strconv.Itoa(s.Migrated)))
	r.Println(output.FormatKeyValue("Current", strconv.Itoa(s.Current)))
	r.Println(output.FormatKeyValue("Skipped", strconv.Itoa(s.Skipped)))
	r.Println(output.FormatKeyValue("Failed", strconv.Itoa(s.Failed)))
	r.Println(output.FormatKeyValue("Written", strconv.FormatBool(write)))
}
