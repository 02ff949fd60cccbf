package format

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/raphi011/abt/internal/workitem"
)

func card(id int, typ, title, state string, parent int) *workitem.WorkItem {
	f := workitem.Fields{
		workitem.FieldType:  typ,
		workitem.FieldTitle: title,
		workitem.FieldState: state,
	}
	if parent > 0 {
		f[workitem.FieldParent] = parent
	}
	return &workitem.WorkItem{ID: id, Fields: f}
}

func TestCardRows_Nesting(t *testing.T) {
	t.Parallel()

	story := card(101, "User Story", "Story", "Active", 0)
	task1 := card(102, "Task", "First", "New", 101)
	task2 := card(103, "Task", "Second", "New", 101)
	bugUnderStory := card(104, "Bug", "Bug in story", "New", 101)
	bugElsewhere := card(105, "Bug", "Orphan bug", "New", 999)
	looseTask := card(106, "Task", "Loose", "New", 0)

	rows := CardRows([]*workitem.WorkItem{story, task1, task2, bugUnderStory, bugElsewhere, looseTask}, CardOptions{})

	tests := []struct {
		id    int
		title string
	}{
		{101, "Story"},
		{102, "  First"},
		{103, "  Second"},
		{104, "  Bug in story"},
		{105, "Orphan bug"},
		{106, "  Loose"},
	}
	for i, tt := range tests {
		if rows[i].ID != tt.id {
			t.Fatalf("row %d id = %d, want %d", i, rows[i].ID, tt.id)
		}
		if got := rows[i].DisplayTitle(); got != tt.title {
			t.Errorf("row %d DisplayTitle() = %q, want %q", tt.id, got, tt.title)
		}
	}
}

func TestCardRows_Fields(t *testing.T) {
	t.Parallel()

	c := card(7, "User Story", "Reset password", "Closed", 20)
	c.Fields[workitem.FieldAssignedTo] = map[string]any{"displayName": "Ada Lovelace", "uniqueName": "ada@example.com"}
	c.Fields.SetParentRef("Feature", workitem.Ref{ID: 20, Title: "Login"})
	c.Fields[workitem.FieldInitialSprint] = "Sprint 4"

	rows := CardRows([]*workitem.WorkItem{c, nil}, CardOptions{
		IsDone: func(s string) bool { return s == "Closed" },
		URL:    func(id int) string { return fmt.Sprintf("https://example.test/%d", id) },
	})

	want := []CardRow{{
		ID:       7,
		Type:     "User Story",
		Title:    "Reset password",
		State:    "Closed",
		Assigned: "Ada",
		Feature:  "Login",
		Epic:     Unknown,
		Initial:  "Sprint 4",
		ParentID: 20,
		Done:     true,
		URL:      "https://example.test/7",
	}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("CardRows() mismatch (-want +got):\n%s", diff)
	}

	wantCells := []string{"7", "Reset password", "Closed", "Ada", "Login", Unknown, "Sprint 4"}
	if diff := cmp.Diff(wantCells, rows[0].Cells()); diff != "" {
		t.Errorf("Cells() mismatch (-want +got):\n%s", diff)
	}
	if len(CardHeaders) != len(wantCells) || len(CardWidths) != len(CardHeaders) {
		t.Errorf("headers/widths/cells length mismatch: %d/%d/%d", len(CardHeaders), len(CardWidths), len(wantCells))
	}
}

func TestCardRows_Placeholders(t *testing.T) {
	t.Parallel()

	rows := CardRows([]*workitem.WorkItem{card(1, "Bug", "b", "New", 0)}, CardOptions{})
	r := rows[0]
	if r.Assigned != Unassigned || r.Feature != Unknown || r.Epic != Unknown || r.Initial != Unknown {
		t.Errorf("placeholders = %q %q %q %q", r.Assigned, r.Feature, r.Epic, r.Initial)
	}
	if r.Done {
		t.Error("Done = true without IsDone")
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"truncated title", 8, "truncat…"},
		{"anything", 0, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestSprintRows(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	finish := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	sprints := []workitem.Sprint{
		{ID: "a", Name: "Sprint 1", Path: `P\Sprint 1`, Attributes: workitem.SprintAttributes{StartDate: &start, FinishDate: &finish, TimeFrame: "current"}},
		{ID: "b", Name: "Backlog-ish", Path: `P\Later`},
	}

	rows := SprintRows(sprints)
	want := []SprintRow{
		{ID: "a", Name: "Sprint 1", Path: `P\Sprint 1`, Start: "2024-03-04", Finish: "2024-03-15", TimeFrame: "current", Current: true},
		{ID: "b", Name: "Backlog-ish", Path: `P\Later`},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("SprintRows() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Backlog-ish", "-", "-", `P\Later`}, rows[1].Cells()); diff != "" {
		t.Errorf("Cells() mismatch (-want +got):\n%s", diff)
	}
}
