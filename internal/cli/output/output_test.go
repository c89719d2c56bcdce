package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTest(mode OutputMode, tty bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, tty, mode), out, errOut
}

func TestMode(t *testing.T) {
	tests := []struct {
		in   string
		want OutputMode
	}{
		{"", ModeAuto},
		{"auto", ModeAuto},
		{"TEXT", ModeText},
		{"markdown", ModeMarkdown},
		{"md", ModeMarkdown},
		{" json ", ModeJSON},
		{"xml", ModeAuto},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Mode(tt.in))
		})
	}
}

func TestRenderer_EffectiveMode(t *testing.T) {
	tests := []struct {
		name string
		mode OutputMode
		tty  bool
		want OutputMode
	}{
		{"auto tty", ModeAuto, true, ModeText},
		{"auto pipe", ModeAuto, false, ModeMarkdown},
		{"explicit text on pipe", ModeText, false, ModeText},
		{"explicit json on tty", ModeJSON, true, ModeJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newTest(tt.mode, tt.tty)
			assert.Equal(t, tt.want, r.EffectiveMode())
			assert.Equal(t, tt.tty, r.IsTTY())
		})
	}
}

func TestNewRenderer_BufferIsNotTTY(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, ModeAuto)
	assert.False(t, r.IsTTY())
	assert.Equal(t, ModeMarkdown, r.EffectiveMode())
}

func TestRenderer_NoANSIWithoutTTY(t *testing.T) {
	r, out, errOut := newTest(ModeText, false)

	r.Header(1, "Layout")
	r.Success("saved")
	r.Warning("careful")
	r.Error("broken")
	r.Muted("quiet")
	r.StatusLine("a.json", StatusFailed, "boom")

	combined := out.String() + errOut.String()
	assert.NotContains(t, combined, "\x1b[")
	assert.Contains(t, out.String(), "Layout")
	assert.Contains(t, out.String(), "✓ saved")
	assert.Contains(t, errOut.String(), "! careful")
	assert.Contains(t, errOut.String(), "✗ broken")
	assert.Contains(t, out.String(), "failed     a.json  boom")
}

func TestRenderer_MarkdownHeader(t *testing.T) {
	r, out, _ := newTest(ModeMarkdown, false)
	r.Header(2, "Tiers")
	r.Success("done")

	assert.Equal(t, "## Tiers\n\ndone\n", out.String())
}

func TestRenderer_JSON(t *testing.T) {
	r, out, _ := newTest(ModeJSON, false)
	require.NoError(t, r.JSON(DiagramSummary{SchemaVersion: 4, Tables: 2}))

	assert.True(t, strings.HasPrefix(out.String(), "{\n  \"schema_version\": 4,"))
	assert.Contains(t, out.String(), "\"tables\": 2")
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "# Title", FormatHeader(1, "Title"))
	assert.Equal(t, "# Zero", FormatHeader(0, "Zero"))
	assert.Equal(t, "### Deep", FormatHeader(3, "Deep"))
	assert.Equal(t, "- **Tables:** 3", FormatKeyValue("Tables", "3"))
	assert.Equal(t, "```dsl\nTABLE a\n```", FormatCodeBlock("dsl", "TABLE a\n"))
	assert.Equal(t, "One To Many", Title("one-to-many"))
	assert.Equal(t, "Too Old", Title("too_old"))
}

func TestTable(t *testing.T) {
	t.Run("box", func(t *testing.T) {
		var buf bytes.Buffer
		Table(&buf, false, []string{"File", "Status"}, [][]string{{"a.json", "migrated"}})
		s := buf.String()
		assert.Contains(t, s, "a.json")
		assert.Contains(t, s, "migrated")
		assert.Contains(t, s, "┌")
	})

	t.Run("markdown", func(t *testing.T) {
		var buf bytes.Buffer
		Table(&buf, true, []string{"File", "Status"}, [][]string{{"a.json", "migrated"}})
		s := buf.String()
		assert.Contains(t, s, "| a.json | migrated |")
		assert.NotContains(t, s, "┌")
	})
}
