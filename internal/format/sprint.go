package format

import (
	"time"

	"github.com/raphi011/abt/internal/workitem"
)

const dateLayout = "2006-01-02"

// SprintRow is one rendered sprint.
type SprintRow struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Path      string `json:"path" yaml:"path"`
	Start     string `json:"start,omitempty" yaml:"start,omitempty"`
	Finish    string `json:"finish,omitempty" yaml:"finish,omitempty"`
	TimeFrame string `json:"time_frame,omitempty" yaml:"time_frame,omitempty"`
	Current   bool   `json:"current" yaml:"current"`
}

// SprintHeaders are the sprint table column names.
var SprintHeaders = []string{"Name", "Start", "Finish", "Path"}

// SprintRows renders sprints in the given order.
func SprintRows(sprints []workitem.Sprint) []SprintRow {
	rows := make([]SprintRow, len(sprints))
	for i, s := range sprints {
		rows[i] = SprintRow{
			ID:        s.ID,
			Name:      s.Name,
			Path:      s.Path,
			Start:     date(s.Attributes.StartDate),
			Finish:    date(s.Attributes.FinishDate),
			TimeFrame: s.Attributes.TimeFrame,
			Current:   s.IsCurrent(),
		}
	}
	return rows
}

// Cells returns the table cells in column order (see SprintHeaders).
// Missing dates render as "-".
func (r SprintRow) Cells() []string {
	return []string{r.Name, orDash(r.Start), orDash(r.Finish), r.Path}
}

func date(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func orDash(s string) string {
	if s == "" {
		return Unassigned
	}
	return s
}
