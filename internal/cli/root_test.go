package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/erd/internal/cli/config"
	clitest "github.com/leapstack-labs/erd/internal/cli/testutil"
	"github.com/leapstack-labs/erd/internal/testutil"
	"github.com/leapstack-labs/erd/pkg/dsl"
	"github.com/leapstack-labs/erd/pkg/schema"
)

// run executes the root command with args against the workspace config.
func run(t *testing.T, dir string, stdin string, args ...string) (string, string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cmd := NewRootCmd()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))

	full := append([]string{"--config", filepath.Join(dir, "erd.yaml"), "--state", filepath.Join(dir, "state.db")}, args...)
	cmd.SetArgs(full)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "erd", cmd.Use)
	for _, name := range []string{"version", "import", "export", "layout", "migrate", "watch", "project", "completion"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, "command %q should exist", name)
		assert.Equal(t, name, sub.Name())
	}
	for _, flag := range []string{"config", "state", "log-level", "verbose", "output"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestImportCommand(t *testing.T) {
	dir, dslPath := clitest.SetupTestWorkspace(t)

	out, _, err := run(t, dir, "", "import", dslPath)
	require.NoError(t, err)

	var env schema.Envelope
	require.NoError(t, json.Unmarshal([]byte(out), &env))
	assert.Equal(t, schema.CurrentVersion, env.SchemaVersion)
	require.Len(t, env.Diagram.Tables, 4)
	assert.Equal(t, "orgs", env.Diagram.Tables[0].Name)
	assert.InDelta(t, 0.0, env.Diagram.Tables[0].Position.X, 0)
	assert.InDelta(t, 400.0, env.Diagram.Tables[1].Position.X, 0)
}

func TestImportCommand_StdinYAML(t *testing.T) {
	dir, _ := clitest.SetupTestWorkspace(t)

	out, _, err := run(t, dir, testutil.OrgsDSL, "import", "-", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "schemaVersion: 4")
	assert.Contains(t, out, "name: orgs")

	// The YAML envelope reads back.
	yamlPath := testutil.WriteFile(t, dir, "schema.yaml", out)
	out, _, err = run(t, dir, "", "export", yamlPath)
	require.NoError(t, err)
	assert.Contains(t, out, "TABLE orgs")
}

func TestImportCommand_SyntaxError(t *testing.T) {
	dir, _ := clitest.SetupTestWorkspace(t)
	bad := testutil.WriteFile(t, dir, "bad.erd", "TABLE a\nCOL a.id Bogus\n")

	_, _, err := run(t, dir, "", "import", bad)
	require.Error(t, err)

	var syn *dsl.SyntaxError
	require.ErrorAs(t, err, &syn)
	assert.Equal(t, 2, syn.Line)
}

func TestExportCommand_RoundTrip(t *testing.T) {
	dir, dslPath := clitest.SetupTestWorkspace(t)
	jsonPath := filepath.Join(dir, "schema.json")

	_, _, err := run(t, dir, "", "import", dslPath, "--out", jsonPath)
	require.NoError(t, err)

	out, _, err := run(t, dir, "", "export", jsonPath)
	require.NoError(t, err)

	// erd.yaml in the workspace turns the header off.
	assert.NotContains(t, out, dsl.HeaderTitle)
	want := strings.SplitN(testutil.OrgsDSL, "\n", 2)[1]
	assert.Equal(t, want, out)
}

func TestExportCommand_NotADiagram(t *testing.T) {
	dir, _ := clitest.SetupTestWorkspace(t)
	path := testutil.WriteFile(t, dir, "other.json", `{"hello": "world"}`)

	_, _, err := run(t, dir, "", "export", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an ER diagram")
}

func TestExportCommand_TooOld(t *testing.T) {
	dir, _ := clitest.SetupTestWorkspace(t)
	path := testutil.WriteFile(t, dir, "old.json", `{"schemaVersion": 1, "diagram": {"tables": []}}`)

	_, _, err := run(t, dir, "", "export", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrTooOld)
}

func TestLayoutCommand(t *testing.T) {
	dir, dslPath := clitest.SetupTestWorkspace(t)

	t.Run("markdown", func(t *testing.T) {
		out, _, err := run(t, dir, "", "layout", dslPath, "-o", "markdown")
		require.NoError(t, err)
		clitest.AssertNoANSI(t, out)
		clitest.AssertValidMarkdown(t, out)
		assert.Contains(t, out, "## Tier 0 (Roots)")
		assert.Contains(t, out, "- orgs at (0, 0)")
		assert.Contains(t, out, "referenced by: users, projects")
		assert.Contains(t, out, "- **Total Tables:** 4")
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := run(t, dir, "", "layout", dslPath, "-o", "json")
		require.NoError(t, err)

		var got struct {
			Tiers []struct {
				Level  int `json:"level"`
				Tables []struct {
					Name string  `json:"name"`
					X    float64 `json:"x"`
				} `json:"tables"`
			} `json:"tiers"`
			TotalTables int `json:"total_tables"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, 4, got.TotalTables)
		require.NotEmpty(t, got.Tiers)
		assert.Equal(t, "orgs", got.Tiers[0].Tables[0].Name)
	})

	t.Run("cycle warning", func(t *testing.T) {
		path := testutil.WriteFile(t, dir, "cycle.erd", testutil.CycleDSL)
		out, errOut, err := run(t, dir, "", "layout", path, "-o", "text")
		require.NoError(t, err)
		assert.Contains(t, out, "Tier 0:")
		assert.Contains(t, errOut, "Reference cycle")
	})
}

func TestMigrateCommand(t *testing.T) {
	dir, _ := clitest.SetupTestWorkspace(t)
	data := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(data, 0750))

	legacy := testutil.WriteFile(t, data, "legacy.json", `{"tables": [{"name": "orgs"}]}`)
	v3 := testutil.WriteFile(t, data, "v3.json", `{"schemaVersion": 3, "diagram": {"tables": [], "memos": []}}`)
	current := testutil.WriteFile(t, data, "current.json", `{"schemaVersion": 4, "diagram": {"tables": []}}`)
	testutil.WriteFile(t, data, "notes.txt", "ignored by extension")
	other := testutil.WriteFile(t, data, "other.json", `{"hello": "world"}`)

	t.Run("dry run", func(t *testing.T) {
		out, _, err := run(t, dir, "", "migrate", data, "-o", "json")
		require.NoError(t, err)

		var report struct {
			Files []struct {
				Path   string `json:"path"`
				Status string `json:"status"`
			} `json:"files"`
			Summary struct {
				Total    int `json:"total"`
				Migrated int `json:"migrated"`
				Current  int `json:"current"`
				Skipped  int `json:"skipped"`
			} `json:"summary"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.Equal(t, 4, report.Summary.Total)
		assert.Equal(t, 2, report.Summary.Migrated)
		assert.Equal(t, 1, report.Summary.Current)
		assert.Equal(t, 1, report.Summary.Skipped)

		raw, err := os.ReadFile(legacy)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "schemaVersion", "dry run must not write")
	})

	t.Run("write", func(t *testing.T) {
		out, _, err := run(t, dir, "", "migrate", legacy, v3, current, other, "--write", "-o", "markdown")
		require.NoError(t, err)
		assert.Contains(t, out, "# Schema Migration")
		assert.Contains(t, out, "- **Migrated:** 2")

		for _, path := range []string{legacy, v3} {
			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			kind, version := schema.Detect(raw)
			assert.Equal(t, schema.KindEnvelope, kind, path)
			assert.Equal(t, schema.CurrentVersion, version, path)
		}
	})

	t.Run("too old fails", func(t *testing.T) {
		old := testutil.WriteFile(t, dir, "old.json", `{"schemaVersion": 1, "diagram": {"tables": []}}`)
		out, _, err := run(t, dir, "", "migrate", old, "-o", "markdown")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 1 files failed")
		assert.Contains(t, out, "too old")
	})
}

func TestProjectCommands(t *testing.T) {
	dir, dslPath := clitest.SetupTestWorkspace(t)

	out, _, err := run(t, dir, "", "project", "list", "-o", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "No projects yet")

	out, _, err = run(t, dir, "", "project", "save", "billing", dslPath, "--description", "invoices")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved billing (4 tables)")

	// Saving again updates the same project.
	_, _, err = run(t, dir, "", "project", "save", "billing", dslPath)
	require.NoError(t, err)

	out, _, err = run(t, dir, "", "project", "list", "-o", "json")
	require.NoError(t, err)
	var list struct {
		Projects []struct {
			Name          string `json:"name"`
			SchemaVersion int    `json:"schema_version"`
			Tables        int    `json:"tables"`
		} `json:"projects"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list.Projects, 1)
	assert.Equal(t, "billing", list.Projects[0].Name)
	assert.Equal(t, schema.CurrentVersion, list.Projects[0].SchemaVersion)
	assert.Equal(t, 4, list.Projects[0].Tables)

	out, _, err = run(t, dir, "", "project", "load", "billing", "--format", "dsl")
	require.NoError(t, err)
	assert.Contains(t, out, "TABLE orgs")
	assert.Contains(t, out, "REF users.org_id")

	out, _, err = run(t, dir, "", "project", "list", "-o", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "Opened")
	assert.NotContains(t, out, "never", "load should record last_opened_at")

	_, _, err = run(t, dir, "", "project", "delete", "billing")
	require.NoError(t, err)

	_, _, err = run(t, dir, "", "project", "load", "billing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestVersionFlag(t *testing.T) {
	dir, _ := clitest.SetupTestWorkspace(t)
	out, _, err := run(t, dir, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "erd v"+Version)
}

func TestInvalidLogLevel(t *testing.T) {
	dir, _ := clitest.SetupTestWorkspace(t)
	_, _, err := run(t, dir, "", "version", "--log-level", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log level")
}
