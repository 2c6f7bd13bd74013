package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/runoshun/confcache/internal/domain"
)

// Colors used in the build browser.
var (
	ColorPrimary   = lipgloss.Color("#6C5CE7") // Purple
	ColorSecondary = lipgloss.Color("#A29BFE") // Lavender
	ColorMuted     = lipgloss.Color("#636E72") // Gray
	ColorError     = lipgloss.Color("#D63031") // Red
	ColorSuccess   = lipgloss.Color("#00B894") // Green
	ColorWarning   = lipgloss.Color("#FDCB6E") // Yellow
	ColorText      = lipgloss.Color("#DFE6E9") // Light gray
	ColorSelected  = lipgloss.Color("#FFEAA7") // Yellow (selected)
)

// Styles holds the styles for the build browser.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Selected lipgloss.Style
	Normal   lipgloss.Style
	Build    lipgloss.Style
	Project  lipgloss.Style
	Work     lipgloss.Style
	Detail   lipgloss.Style
	Loading  lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Footer   lipgloss.Style
}

// DefaultStyles returns the default styles.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary),
		Subtitle: lipgloss.NewStyle().
			Foreground(ColorMuted).
			MarginBottom(1),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSelected),
		Normal: lipgloss.NewStyle().
			Foreground(ColorText),
		Build: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary),
		Project: lipgloss.NewStyle().
			Foreground(ColorText),
		Work: lipgloss.NewStyle().
			Foreground(ColorSuccess),
		Detail: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true),
		Loading: lipgloss.NewStyle().
			Foreground(ColorWarning).
			Italic(true),
		Error: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true),
		Warning: lipgloss.NewStyle().
			Foreground(ColorWarning),
		Footer: lipgloss.NewStyle().
			Foreground(ColorMuted).
			MarginTop(1),
	}
}

// StageStyle returns the style for a build stage badge.
func StageStyle(stage domain.BuildStage) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch stage {
	case domain.StageScheduled:
		return base.Foreground(ColorSuccess)
	case domain.StageConfigured:
		return base.Foreground(ColorSecondary)
	case domain.StageFinished:
		return base.Foreground(ColorMuted)
	default:
		return base.Foreground(ColorWarning)
	}
}
