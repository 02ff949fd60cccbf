package format

import (
	"strconv"

	"github.com/charmbracelet/x/ansi"

	"github.com/raphi011/abt/internal/workitem"
)

// Placeholders for missing values.
const (
	Unassigned = "-"
	Unknown    = "unknown"
)

// indent is prepended to titles of nested cards.
const indent = "  "

// CardRow is one rendered card.
type CardRow struct {
	ID       int    `json:"id" yaml:"id"`
	Type     string `json:"type" yaml:"type"`
	Title    string `json:"title" yaml:"title"`
	State    string `json:"state" yaml:"state"`
	Assigned string `json:"assigned" yaml:"assigned"`
	Feature  string `json:"feature" yaml:"feature"`
	Epic     string `json:"epic" yaml:"epic"`
	Initial  string `json:"initial_sprint" yaml:"initial_sprint"`
	ParentID int    `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Nested   bool   `json:"nested" yaml:"nested"`
	Done     bool   `json:"done" yaml:"done"`
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`
}

// CardOptions controls CardRows.
type CardOptions struct {
	// IsDone reports done states. nil marks nothing as done.
	IsDone func(state string) bool
	// URL builds a card's browser link. nil leaves URL empty.
	URL func(id int) string
}

// CardRows renders cards in order. A card is nested when it is a Task or
// its parent is one of cards.
func CardRows(cards []*workitem.WorkItem, opts CardOptions) []CardRow {
	inSet := make(map[int]bool, len(cards))
	for _, c := range cards {
		if c != nil {
			inSet[c.ID] = true
		}
	}

	rows := make([]CardRow, 0, len(cards))
	for _, c := range cards {
		if c == nil {
			continue
		}
		f := c.Fields
		row := CardRow{
			ID:       c.ID,
			Type:     f.Type(),
			Title:    f.Title(),
			State:    f.State(),
			Assigned: Unassigned,
			Feature:  refTitle(f, "Feature"),
			Epic:     refTitle(f, "Epic"),
			Initial:  orUnknown(f.InitialSprint()),
		}
		if who, ok := f.AssignedTo(); ok {
			if first := who.FirstName(); first != "" {
				row.Assigned = first
			}
		}
		if pid, ok := f.Parent(); ok {
			row.ParentID = pid
		}
		row.Nested = row.Type == "Task" || (row.ParentID != 0 && inSet[row.ParentID])
		if opts.IsDone != nil {
			row.Done = opts.IsDone(row.State)
		}
		if opts.URL != nil {
			row.URL = opts.URL(c.ID)
		}
		rows = append(rows, row)
	}
	return rows
}

// DisplayTitle returns the title with nesting applied.
func (r CardRow) DisplayTitle() string {
	if r.Nested {
		return indent + r.Title
	}
	return r.Title
}

// Cells returns the table cells in column order (see CardHeaders).
func (r CardRow) Cells() []string {
	return []string{
		strconv.Itoa(r.ID),
		r.DisplayTitle(),
		r.State,
		r.Assigned,
		r.Feature,
		r.Epic,
		r.Initial,
	}
}

// CardHeaders are the card table column names.
var CardHeaders = []string{"ID", "Title", "State", "Assigned", "Feature", "Epic", "Initial"}

// CardWidths are the preferred column widths, matching CardHeaders.
var CardWidths = []int{6, 60, 15, 9, 35, 35, 20}

func refTitle(f workitem.Fields, typ string) string {
	ref, ok := f.Ref(workitem.ParentTypeKey(typ))
	if !ok {
		return Unknown
	}
	return orUnknown(ref.Title)
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}

// Truncate shortens s to width display cells, marking the cut with "…".
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}
