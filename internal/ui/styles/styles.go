// Package styles provides shared lipgloss styles for UI components.
//
// Colors come from the active [Theme] (see [Init]); the style variables are
// rebuilt whenever the theme changes, so read them at render time.
package styles

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Theme colors, set by Init.
var (
	Primary color.Color = lipgloss.Color("62")
	Accent  color.Color = lipgloss.Color("212")
	Success color.Color = lipgloss.Color("82")
	Error   color.Color = lipgloss.Color("196")
	Muted   color.Color = lipgloss.Color("240")
	Normal  color.Color = lipgloss.Color("252")
	Info    color.Color = lipgloss.Color("244")
	Warning color.Color = lipgloss.Color("214")
)

// Common styles
var (
	Bold   = lipgloss.NewStyle().Bold(true)
	Italic = lipgloss.NewStyle().Italic(true)

	PrimaryStyle = lipgloss.NewStyle().Foreground(Primary)
	AccentStyle  = lipgloss.NewStyle().Foreground(Accent).Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(Success)
	ErrorStyle   = lipgloss.NewStyle().Foreground(Error)
	MutedStyle   = lipgloss.NewStyle().Foreground(Muted)
	NormalStyle  = lipgloss.NewStyle().Foreground(Normal)
	InfoStyle    = lipgloss.NewStyle().Foreground(Info).Italic(true)
	WarningStyle = lipgloss.NewStyle().Foreground(Warning)

	// DoneStyle dims cards in a done state.
	DoneStyle = lipgloss.NewStyle().Faint(true)

	// HighlightStyle marks fuzzy-matched characters.
	HighlightStyle = lipgloss.NewStyle().Foreground(Accent).Bold(true).Underline(true)
)

// Pane borders
var (
	PaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Muted)

	ActivePaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary)
)
