package enrich

import (
	"testing"

	"github.com/raphi011/abt/internal/workitem"
)

func TestSprintHistory(t *testing.T) {
	t.Parallel()

	h := NewSprintHistory()
	h.SetSprints([]workitem.Sprint{
		{ID: "a", Name: "Sprint 1"},
		{ID: "b", Name: "Sprint 2"},
		{ID: "c", Name: "Sprint 3"},
	})

	h.Observe("c", []int{1, 2})
	h.Observe("b", []int{2})
	h.Observe("c", []int{3})
	h.Observe("x", []int{3, 4}) // not in the team list, ranks after all known sprints

	tests := []struct {
		id     int
		want   string
		wantOK bool
	}{
		{1, "Sprint 3", true},
		{2, "Sprint 2", true},
		{3, "Sprint 3", true},
		{4, "x", true},
		{5, "", false},
	}
	for _, tt := range tests {
		got, ok := h.Initial(tt.id)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Initial(%d) = %q, %v, want %q, %v", tt.id, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestSprintHistory_WithoutSprintList(t *testing.T) {
	t.Parallel()

	h := NewSprintHistory()
	h.Observe("first", []int{1})
	h.Observe("second", []int{1, 2})

	if got, _ := h.Initial(1); got != "first" {
		t.Errorf("Initial(1) = %q, want %q", got, "first")
	}
	if got, _ := h.Initial(2); got != "second" {
		t.Errorf("Initial(2) = %q, want %q", got, "second")
	}
}

func TestSprintHistory_ListArrivesLate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		observe func(h *SprintHistory)
		want    string
	}{
		{
			name: "listed sprint observed after the list",
			observe: func(h *SprintHistory) {
				h.Observe("gone", []int{1})
				h.SetSprints([]workitem.Sprint{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}})
				h.Observe("a", []int{1})
			},
			want: "A",
		},
		{
			name: "listed sprint observed before the list",
			observe: func(h *SprintHistory) {
				h.Observe("gone", []int{1})
				h.Observe("b", []int{1})
				h.SetSprints([]workitem.Sprint{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}})
			},
			want: "B",
		},
		{
			name: "unlisted sprints keep their order",
			observe: func(h *SprintHistory) {
				h.Observe("old", []int{1})
				h.Observe("older", []int{1})
				h.SetSprints([]workitem.Sprint{{ID: "a", Name: "A"}})
			},
			want: "old",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := NewSprintHistory()
			tt.observe(h)
			if got, _ := h.Initial(1); got != tt.want {
				t.Errorf("Initial(1) = %q, want %q", got, tt.want)
			}
		})
	}
}
