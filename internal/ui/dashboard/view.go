package dashboard

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/raphi011/abt/internal/format"
	"github.com/raphi011/abt/internal/ui/styles"
)

// chrome is the number of lines outside the panes: header, status, help.
const chrome = 3

// border is the cells a rounded border takes on each axis.
const border = 2

func (m *Model) View() tea.View {
	var content string
	if m.mode == modeFatal {
		content = m.fatalView()
	} else {
		content = lipgloss.JoinVertical(lipgloss.Left,
			m.headerView(),
			m.bodyView(),
			m.statusView(),
			m.helpView(),
		)
	}
	v := tea.NewView(content)
	v.AltScreen = true
	return v
}

func (m *Model) sprintWidth() int {
	return min(max(m.width/4, 20), 36)
}

// paneHeight is the inner height of both panes.
func (m *Model) paneHeight() int {
	return max(m.height-chrome-border, 3)
}

// cardRows is the number of card rows that fit below the table header.
func (m *Model) cardRows() int {
	return max(m.paneHeight()-1, 1)
}

func (m *Model) headerView() string {
	title := styles.PrimaryStyle.Bold(true).Render("abt")
	scope := styles.MutedStyle.Render(m.sess.Project() + " / " + m.sess.Team())
	line := title + " " + scope
	if m.loading {
		line += " " + m.spinner.View()
	}
	return line
}

func (m *Model) bodyView() string {
	sw := m.sprintWidth()
	cw := max(m.width-sw-2*border, 10)
	h := m.paneHeight()

	active := -1
	for i, s := range m.sprints {
		if s.ID == m.selected {
			active = i
		}
	}
	left := m.paneStyle(sprintPane).Width(sw + border).Height(h + border).
		Render(m.sprintUI.View(sw, h, active))

	var right string
	if m.mode == modeMove {
		right = styles.ActivePaneStyle.Width(cw + border).Height(h + border).
			Render(m.pickerView(cw, h))
	} else {
		right = m.paneStyle(cardPane).Width(cw + border).Height(h + border).
			Render(m.cardsView(cw))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m *Model) paneStyle(p pane) lipgloss.Style {
	if m.focus == p && m.mode != modeMove {
		return styles.ActivePaneStyle
	}
	return styles.PaneStyle
}

func (m *Model) pickerView(width, height int) string {
	card, _ := m.currentCard()
	title := styles.AccentStyle.Render(fmt.Sprintf("Move #%d to", card.ID))
	return title + "\n" + m.picker.View(width, height-1, -1)
}

func (m *Model) cardsView(width int) string {
	if len(m.cards) == 0 {
		if m.loading {
			return styles.MutedStyle.Render("loading…")
		}
		return styles.MutedStyle.Render("no cards")
	}

	lines := []string{ansi.Truncate(styles.Bold.Render(cardHeaderLine()), width, "")}
	end := min(m.cardOffset+m.cardRows(), len(m.cards))
	for i := m.cardOffset; i < end; i++ {
		lines = append(lines, cardLine(m.cards[i], width, i == m.cardCursor && m.focus == cardPane))
	}
	return strings.Join(lines, "\n")
}

func cardHeaderLine() string {
	cells := make([]string, len(format.CardHeaders))
	for i, h := range format.CardHeaders {
		cells[i] = pad(h, format.CardWidths[i])
	}
	return strings.Join(cells, " ")
}

// cardLine renders one card: the ID cell on its type color, the rest
// dimmed when done and reversed under the cursor.
func cardLine(r format.CardRow, width int, selected bool) string {
	cells := r.Cells()
	id := styles.CardIDStyle(r.Type).Render(pad(cells[0], format.CardWidths[0]))

	rest := make([]string, 0, len(cells)-1)
	for i := 1; i < len(cells); i++ {
		rest = append(rest, pad(format.Truncate(cells[i], format.CardWidths[i]), format.CardWidths[i]))
	}
	style := styles.CardTextStyle(r.Done)
	if selected {
		style = style.Reverse(true)
	}
	return ansi.Truncate(id+" "+style.Render(strings.Join(rest, " ")), width, "")
}

// pad right-pads s with spaces to width cells.
func pad(s string, width int) string {
	if n := width - ansi.StringWidth(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

func (m *Model) statusView() string {
	st := m.sess.CacheStats()
	stats := styles.MutedStyle.Render(fmt.Sprintf("cache %d hit · %d miss · %d calls", st.Hits, st.Misses, st.RemoteCalls))

	status := styles.NormalStyle.Render(m.status)
	if m.failed {
		status = styles.ErrorStyle.Render(m.status)
	}
	gap := max(m.width-ansi.StringWidth(status)-ansi.StringWidth(stats), 1)
	return status + strings.Repeat(" ", gap) + stats
}

func (m *Model) helpView() string {
	switch {
	case m.mode == modeMove:
		return m.help.View(pickerHelp{m.keys})
	case m.focus == cardPane:
		return m.help.View(cardHelp{m.keys})
	default:
		return m.help.View(sprintHelp{m.keys})
	}
}

func (m *Model) fatalView() string {
	banner := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(styles.Error).
		Padding(1, 3).
		Render(lipgloss.JoinVertical(lipgloss.Center,
			styles.ErrorStyle.Bold(true).Render("abt cannot continue"),
			"",
			m.fatal.Error(),
			"",
			styles.MutedStyle.Render("press any key to quit"),
		))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, banner)
}
