package styles

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// CardTypeColors are the ID cell backgrounds per work item type. They are
// the board's own colors and do not follow the theme.
var CardTypeColors = map[string]color.Color{
	"User Story": lipgloss.Color("#2a7fff"),
	"Task":       lipgloss.Color("#803300"),
	"Bug":        lipgloss.Color("#b82727"),
	"Feature":    lipgloss.Color("#7137c8"),
	"Epic":       lipgloss.Color("#e69138"),
}

var cardIDForeground = lipgloss.Color("#ffffff")

// CardTypeColor returns the background for a work item type, or nil for
// unknown types.
func CardTypeColor(workItemType string) color.Color {
	return CardTypeColors[workItemType]
}

// CardIDStyle returns the ID cell style for a work item type.
func CardIDStyle(workItemType string) lipgloss.Style {
	s := lipgloss.NewStyle()
	if c := CardTypeColor(workItemType); c != nil {
		s = s.Background(c).Foreground(cardIDForeground)
	}
	return s
}

// CardTextStyle returns the style for the remaining cells of a card row.
func CardTextStyle(done bool) lipgloss.Style {
	if done {
		return DoneStyle
	}
	return lipgloss.NewStyle()
}
