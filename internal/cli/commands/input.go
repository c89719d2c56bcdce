package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/erd/internal/cli/config"
	"github.com/leapstack-labs/erd/pkg/diagram"
	"github.com/leapstack-labs/erd/pkg/dsl"
	"github.com/leapstack-labs/erd/pkg/schema"
)

// stdinArg selects standard input or output.
const stdinArg = "-"

// Source formats recognized by sniffInput.
const (
	sourceDSL  = "dsl"
	sourceJSON = "json"
	sourceYAML = "yaml"
)

// errNotADiagram is returned when input parses but carries no diagram.
var errNotADiagram = errors.New("input is not an ER diagram")

// readInput reads a file, or standard input for "-".
func readInput(cmd *cobra.Command, arg string) ([]byte, error) {
	if arg == stdinArg {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read standard input: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(arg) //nolint:gosec // reading user-named files is the point
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", arg, err)
	}
	return data, nil
}

// sniffInput names the format of data: DSL, JSON, or YAML as a fallback.
func sniffInput(data []byte) string {
	text := string(data)
	switch {
	case dsl.IsDSL(text):
		return sourceDSL
	case dsl.IsJSON(text):
		return sourceJSON
	default:
		return sourceYAML
	}
}

// decodeInput turns DSL, JSON or YAML text into a diagram. DSL is parsed and
// laid out with the configured spacing; JSON and YAML go through the schema
// decoder, so older envelopes are migrated.
func decodeInput(data []byte, cfg *config.Config, cctx *CommandContext) (*diagram.ERDiagram, string, error) {
	source := sniffInput(data)
	switch source {
	case sourceDSL:
		lo := cfg.Layout.Options()
		lo.Logger = cctx.Logger
		d, err := dsl.Parse(string(data), dsl.WithLayout(lo), dsl.WithLogger(cctx.Logger))
		if err != nil {
			return nil, source, err
		}
		return &d, source, nil
	case sourceJSON:
		d, err := schema.DecodeJSON(data, schema.WithLogger(cctx.Logger))
		if err != nil {
			return nil, source, err
		}
		if d == nil {
			return nil, source, errNotADiagram
		}
		return d, source, nil
	}

	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, source, fmt.Errorf("input is neither DSL, JSON nor YAML: %w", err)
	}
	d, err := schema.Decode(tree, schema.WithLogger(cctx.Logger))
	if err != nil {
		return nil, source, err
	}
	if d == nil {
		return nil, source, errNotADiagram
	}
	return d, source, nil
}

// loadDiagram reads and decodes the argument.
func loadDiagram(cmd *cobra.Command, cctx *CommandContext, arg string) (*diagram.ERDiagram, string, error) {
	data, err := readInput(cmd, arg)
	if err != nil {
		return nil, "", err
	}
	d, source, err := decodeInput(data, cctx.Cfg, cctx)
	if err != nil {
		if arg != stdinArg {
			return nil, source, fmt.Errorf("%s: %w", arg, err)
		}
		return nil, source, err
	}
	return d, source, nil
}

// marshalEnvelope renders an envelope as indented JSON or YAML.
func marshalEnvelope(env schema.Envelope, format string) ([]byte, error) {
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}
	switch format {
	case "", sourceJSON:
		return append(data, '\n'), nil
	case sourceYAML:
		// Go through a generic tree so YAML keys match the JSON field names.
		var tree any
		if err := json.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("failed to convert envelope: %w", err)
		}
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(tree); err != nil {
			return nil, fmt.Errorf("failed to marshal envelope as yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to marshal envelope as yaml: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unknown format %q (expected json or yaml)", format)
}

// writeOutput writes data to path, or to the command's stdout for "" and "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == stdinArg {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// writeFileAtomic replaces path via a temp file in the same directory.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
