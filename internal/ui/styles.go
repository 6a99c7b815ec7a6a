package ui

import "github.com/charmbracelet/lipgloss"

// Semantic color palette.
var (
	colorPrimary = lipgloss.Color("#00BFFF") // cyan
	colorAccent  = lipgloss.Color("#FFD700") // gold
	colorSuccess = lipgloss.Color("#00E676")
	colorDanger  = lipgloss.Color("#FF5252")
	colorMuted   = lipgloss.Color("#8C8C8C")
	colorBlue    = lipgloss.Color("#5B8DEF")
)

// Status icons.
const (
	iconDone    = "✓"
	iconFailed  = "✗"
	iconWorking = "◎"
	iconInfo    = "·"
)

// styles holds every style bound to one renderer, so that color is decided
// by the printer's writer and not by the process's stdout.
type styles struct {
	title   lipgloss.Style
	muted   lipgloss.Style
	accent  lipgloss.Style
	success lipgloss.Style
	danger  lipgloss.Style
	working lipgloss.Style
	banner  lipgloss.Style
	header  lipgloss.Style
	cell    lipgloss.Style
	number  lipgloss.Style
	border  lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:   r.NewStyle().Foreground(colorPrimary).Bold(true),
		muted:   r.NewStyle().Foreground(colorMuted),
		accent:  r.NewStyle().Foreground(colorAccent).Bold(true),
		success: r.NewStyle().Foreground(colorSuccess).Bold(true),
		danger:  r.NewStyle().Foreground(colorDanger).Bold(true),
		working: r.NewStyle().Foreground(colorBlue),
		banner: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 2),
		header: r.NewStyle().Foreground(colorPrimary).Bold(true).Padding(0, 1),
		cell:   r.NewStyle().Padding(0, 1),
		number: r.NewStyle().Padding(0, 1).Align(lipgloss.Right),
		border: r.NewStyle().Foreground(colorMuted),
	}
}
