package dashboard

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestFuzzyList_Filter(t *testing.T) {
	t.Parallel()

	l := newFuzzyList([]string{"Sprint 10", "Sprint 9", "Backlog"})
	if l.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", l.Len())
	}

	l.SetFilter("Blg")
	i, ok := l.Selected()
	if !ok || i != 2 {
		t.Errorf("Selected() = %d, %v, want 2, true", i, ok)
	}

	l.SetFilter("zzz")
	if _, ok := l.Selected(); ok {
		t.Error("Selected() with no matches should be false")
	}
	if !strings.Contains(l.View(30, 5, -1), "no matches") {
		t.Error("empty result should say so")
	}

	l.SetFilter("")
	if l.Len() != 3 {
		t.Errorf("Len() after clearing = %d, want 3", l.Len())
	}
}

func TestFuzzyList_Move(t *testing.T) {
	t.Parallel()

	l := newFuzzyList([]string{"a", "b", "c"})
	l.Move(-1)
	if i, _ := l.Selected(); i != 0 {
		t.Errorf("cursor = %d, want clamped to 0", i)
	}
	l.Move(5)
	if i, _ := l.Selected(); i != 2 {
		t.Errorf("cursor = %d, want clamped to 2", i)
	}
	l.Select(1)
	if i, _ := l.Selected(); i != 1 {
		t.Errorf("cursor = %d, want 1", i)
	}
}

func TestFuzzyList_ViewScrolls(t *testing.T) {
	t.Parallel()

	l := newFuzzyList([]string{"one", "two", "three", "four", "five"})
	l.Move(4)
	view := ansi.Strip(l.View(20, 2, 0))
	if strings.Contains(view, "one") || !strings.Contains(view, "five") {
		t.Errorf("view does not follow the cursor:\n%s", view)
	}
}

func TestFuzzyList_UpdateIgnoredWhenBlurred(t *testing.T) {
	t.Parallel()

	l := newFuzzyList([]string{"a"})
	if cmd := l.Update(keyMsg("x")); cmd != nil || l.Filter() != "" {
		t.Errorf("blurred list took input: filter = %q", l.Filter())
	}
}
