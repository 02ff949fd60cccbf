package dashboard

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/sahilm/fuzzy"

	"github.com/raphi011/abt/internal/ui/styles"
)

// labelSource implements fuzzy.Source for list labels.
type labelSource []string

func (s labelSource) String(i int) string { return s[i] }
func (s labelSource) Len() int            { return len(s) }

// fuzzyList is a cursor list narrowed by a fuzzy filter. The sprint pane
// and the move picker both use it.
type fuzzyList struct {
	labels   []string
	matches  []fuzzy.Match
	cursor   int
	input    textinput.Model
	focused  bool
	emphasis func(i int) bool // labels rendered in the accent color
}

func newFuzzyList(labels []string) fuzzyList {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "filter"
	l := fuzzyList{labels: labels, input: ti}
	l.apply()
	return l
}

// SetLabels replaces the items and reapplies the filter.
func (l *fuzzyList) SetLabels(labels []string) {
	l.labels = labels
	l.apply()
}

// Filter returns the current filter text.
func (l *fuzzyList) Filter() string { return l.input.Value() }

// SetFilter replaces the filter text and resets the cursor.
func (l *fuzzyList) SetFilter(s string) {
	l.input.SetValue(s)
	l.apply()
}

// apply recomputes matches. An empty filter lists every label in order;
// otherwise matches are ordered by score.
func (l *fuzzyList) apply() {
	pattern := strings.TrimSpace(l.input.Value())
	if pattern == "" {
		l.matches = make([]fuzzy.Match, len(l.labels))
		for i, s := range l.labels {
			l.matches[i] = fuzzy.Match{Str: s, Index: i}
		}
	} else {
		l.matches = fuzzy.FindFrom(pattern, labelSource(l.labels))
	}
	l.cursor = min(l.cursor, max(len(l.matches)-1, 0))
}

// Focus starts editing the filter.
func (l *fuzzyList) Focus() tea.Cmd {
	l.focused = true
	return l.input.Focus()
}

// Blur stops editing the filter, keeping its text.
func (l *fuzzyList) Blur() {
	l.focused = false
	l.input.Blur()
}

// Focused reports whether the filter is being edited.
func (l *fuzzyList) Focused() bool { return l.focused }

// Update feeds a key to the filter input when focused.
func (l *fuzzyList) Update(msg tea.Msg) tea.Cmd {
	if !l.focused {
		return nil
	}
	before := l.input.Value()
	var cmd tea.Cmd
	l.input, cmd = l.input.Update(msg)
	if l.input.Value() != before {
		l.cursor = 0
		l.apply()
	}
	return cmd
}

// Move shifts the cursor by delta, clamped to the matches.
func (l *fuzzyList) Move(delta int) {
	if len(l.matches) == 0 {
		l.cursor = 0
		return
	}
	l.cursor = min(max(l.cursor+delta, 0), len(l.matches)-1)
}

// Selected returns the label index under the cursor.
func (l *fuzzyList) Selected() (int, bool) {
	if l.cursor < 0 || l.cursor >= len(l.matches) {
		return 0, false
	}
	return l.matches[l.cursor].Index, true
}

// Select moves the cursor to label index i when it is visible.
func (l *fuzzyList) Select(i int) {
	for pos, m := range l.matches {
		if m.Index == i {
			l.cursor = pos
			return
		}
	}
}

// Len returns the number of visible items.
func (l *fuzzyList) Len() int { return len(l.matches) }

// View renders at most height lines of width cells, keeping the cursor in
// view. marker is drawn before the label at index active.
func (l *fuzzyList) View(width, height int, active int) string {
	var b strings.Builder
	if l.focused || l.input.Value() != "" {
		b.WriteString(ansi.Truncate(l.input.View(), width, ""))
		b.WriteString("\n")
		height--
	}
	if len(l.matches) == 0 {
		b.WriteString(styles.MutedStyle.Render("no matches"))
		return b.String()
	}
	if height <= 0 {
		return strings.TrimRight(b.String(), "\n")
	}

	start := 0
	if l.cursor >= height {
		start = l.cursor - height + 1
	}
	end := min(start+height, len(l.matches))

	for pos := start; pos < end; pos++ {
		m := l.matches[pos]
		line := highlight(m, width-2)
		if l.emphasis != nil && l.emphasis(m.Index) {
			line = styles.AccentStyle.Render(line)
		}
		prefix := "  "
		if m.Index == active {
			prefix = "• "
		}
		if pos == l.cursor {
			line = styles.Bold.Reverse(true).Render(ansi.Strip(line))
		}
		b.WriteString(prefix + line)
		if pos < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// highlight renders a match with its matched characters emphasized,
// truncated to width cells.
func highlight(m fuzzy.Match, width int) string {
	s := ansi.Truncate(m.Str, width, "…")
	if len(m.MatchedIndexes) == 0 {
		return s
	}
	matched := make(map[int]bool, len(m.MatchedIndexes))
	for _, i := range m.MatchedIndexes {
		matched[i] = true
	}
	var b strings.Builder
	for i, r := range s {
		if matched[i] {
			b.WriteString(styles.HighlightStyle.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
