// Package static provides non-interactive terminal output components.
//
// This package contains components for rendering formatted output
// that does not require user interaction, such as tables and
// formatted text displays.
package static

import (
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/raphi011/abt/internal/format"
	"github.com/raphi011/abt/internal/ui/styles"
)

// RenderTable creates a formatted table with proper column alignment.
// Headers and rows are rendered using lipgloss/table which automatically
// calculates column widths based on content. No borders are rendered.
func RenderTable(headers []string, rows [][]string) string {
	return render(headers, rows, func(int, int) lipgloss.Style { return lipgloss.NewStyle() })
}

// RenderCards renders card rows. The ID cell is colored by work item type
// and done cards are dimmed. Long cells are truncated to format.CardWidths.
func RenderCards(rows []format.CardRow) string {
	cells := make([][]string, len(rows))
	for i, r := range rows {
		c := r.Cells()
		for j := range c {
			if j < len(format.CardWidths) {
				c[j] = format.Truncate(c[j], format.CardWidths[j])
			}
		}
		cells[i] = c
	}

	return render(format.CardHeaders, cells, func(row, col int) lipgloss.Style {
		r := rows[row]
		if col == 0 {
			return styles.CardIDStyle(r.Type)
		}
		return styles.CardTextStyle(r.Done)
	})
}

// RenderSprints renders sprint rows, highlighting the current sprint.
func RenderSprints(rows []format.SprintRow) string {
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = r.Cells()
	}

	return render(format.SprintHeaders, cells, func(row, _ int) lipgloss.Style {
		if rows[row].Current {
			return styles.AccentStyle
		}
		return lipgloss.NewStyle()
	})
}

// render draws a borderless table. cell styles data cells; the right
// padding is added here.
func render(headers []string, rows [][]string, cell func(row, col int) lipgloss.Style) string {
	if len(rows) == 0 {
		return ""
	}

	var output strings.Builder

	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		BorderRow(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).PaddingRight(2)
			}
			return cell(row, col).PaddingRight(2)
		})

	output.WriteString(t.String())
	output.WriteString("\n")

	return output.String()
}
