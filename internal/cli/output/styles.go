package output

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles holds the lipgloss styles used by commands.
type Styles struct {
	Bold          lipgloss.Style
	Header1       lipgloss.Style
	Header2       lipgloss.Style
	Info          lipgloss.Style
	Success       lipgloss.Style
	Warning       lipgloss.Style
	Error         lipgloss.Style
	Muted         lipgloss.Style
	ModelPath     lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
	StatusSkipped lipgloss.Style
}

// NewStyles builds the style set on the given lipgloss renderer.
func NewStyles(lr *lipgloss.Renderer) *Styles {
	return &Styles{
		Bold:          lr.NewStyle().Bold(true),
		Header1:       lr.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("12")),
		Header2:       lr.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		Info:          lr.NewStyle().Foreground(lipgloss.Color("12")),
		Success:       lr.NewStyle().Foreground(lipgloss.Color("10")),
		Warning:       lr.NewStyle().Foreground(lipgloss.Color("11")),
		Error:         lr.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		Muted:         lr.NewStyle().Foreground(lipgloss.Color("8")),
		ModelPath:     lr.NewStyle().Foreground(lipgloss.Color("13")),
		StatusSuccess: lr.NewStyle().Foreground(lipgloss.Color("10")),
		StatusFailed:  lr.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		StatusSkipped: lr.NewStyle().Foreground(lipgloss.Color("8")),
	}
}
