package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/google/go-cmp/cmp"

	"github.com/raphi011/abt/internal/boards"
	"github.com/raphi011/abt/internal/cache"
	"github.com/raphi011/abt/internal/config"
	"github.com/raphi011/abt/internal/enrich"
	"github.com/raphi011/abt/internal/session"
	"github.com/raphi011/abt/internal/workitem"
)

type fakeSession struct {
	mu       sync.Mutex
	sprints  []workitem.Sprint
	selected []string
	states   []string
	moves    []string
	refresh  int
	listener session.Listener
}

func (f *fakeSession) Project() string { return "proj" }
func (f *fakeSession) Team() string    { return "team" }

func (f *fakeSession) Sprints(context.Context) ([]workitem.Sprint, error) {
	return f.sprints, nil
}

func (f *fakeSession) SelectSprint(_ context.Context, id string) (enrich.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selected = append(f.selected, id)
	return enrich.Result{SprintID: id}, nil
}

func (f *fakeSession) Refresh(context.Context) (enrich.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refresh++
	return enrich.Result{}, nil
}

func (f *fakeSession) SetCardState(_ context.Context, id int, state string) (*workitem.WorkItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, fmt.Sprintf("%d:%s", id, state))
	return &workitem.WorkItem{ID: id}, nil
}

func (f *fakeSession) MoveCard(_ context.Context, id int, target string) (*workitem.WorkItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moves = append(f.moves, fmt.Sprintf("%d:%s", id, target))
	return &workitem.WorkItem{ID: id}, nil
}

func (f *fakeSession) WebURL(id int) string           { return fmt.Sprintf("https://example.test/%d", id) }
func (f *fakeSession) CacheStats() cache.Stats        { return cache.Stats{Hits: 3, Misses: 2, RemoteCalls: 1} }
func (f *fakeSession) SetListener(l session.Listener) { f.listener = l }

func keyMsg(k string) tea.KeyPressMsg {
	switch k {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	default:
		r := []rune(k)[0]
		return tea.KeyPressMsg{Code: r, Text: k}
	}
}

func sprints() []workitem.Sprint {
	return []workitem.Sprint{
		{ID: "s3", Name: "Sprint 3", Path: `P\Sprint 3`, Attributes: workitem.SprintAttributes{TimeFrame: "future"}},
		{ID: "s2", Name: "Sprint 2", Path: `P\Sprint 2`, Attributes: workitem.SprintAttributes{TimeFrame: workitem.TimeFrameCurrent}},
		{ID: "s1", Name: "Sprint 1", Path: `P\Sprint 1`, Attributes: workitem.SprintAttributes{TimeFrame: "past"}},
	}
}

func card(id int, typ, title, state string) *workitem.WorkItem {
	return &workitem.WorkItem{ID: id, Fields: workitem.Fields{
		workitem.FieldType:  typ,
		workitem.FieldTitle: title,
		workitem.FieldState: state,
	}}
}

var testStates = []config.StateKey{{Key: "n", State: "New"}, {Key: "a", State: "Active"}, {Key: "d", State: "Done"}}

// loaded returns a model with sprints loaded and s2's cards shown.
func loaded(t *testing.T, opts Options) (*Model, *fakeSession) {
	t.Helper()

	sess := &fakeSession{sprints: sprints()}
	if opts.States == nil {
		opts.States = testStates
	}
	m := New(context.Background(), sess, opts)

	cmd := m.onSprints(sprintsLoadedMsg{sprints: sess.sprints})
	if cmd == nil {
		t.Fatal("loading sprints did not select one")
	}
	cmd()

	m.Update(cardsReadyMsg{res: enrich.Result{
		SprintID: m.selected,
		Cards:    []*workitem.WorkItem{card(1, "User Story", "Login", "Active"), card(2, "Task", "Form", "Done")},
	}})
	return m, sess
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(keyMsg(k))
	}
	return cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestInitialSprint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		initial string
		want    string
	}{
		{"current sprint by default", "", "s2"},
		{"remembered sprint", "s1", "s1"},
		{"stale remembered sprint", "gone", "s2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var remembered []string
			m, sess := loaded(t, Options{
				InitialSprint: tt.initial,
				OnSelect:      func(id string) { remembered = append(remembered, id) },
			})
			if m.selected != tt.want {
				t.Errorf("selected = %q, want %q", m.selected, tt.want)
			}
			if diff := cmp.Diff([]string{tt.want}, sess.selected); diff != "" {
				t.Errorf("SelectSprint calls mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff([]string{tt.want}, remembered); diff != "" {
				t.Errorf("OnSelect calls mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInitialSprint_NoCurrent(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{sprints: []workitem.Sprint{{ID: "b", Name: "B"}, {ID: "a", Name: "A"}}}
	m := New(context.Background(), sess, Options{})
	m.onSprints(sprintsLoadedMsg{sprints: sess.sprints})
	if m.selected != "b" {
		t.Errorf("selected = %q, want newest sprint %q", m.selected, "b")
	}
}

func TestNoSprints(t *testing.T) {
	t.Parallel()

	m := New(context.Background(), &fakeSession{}, Options{})
	if cmd := m.onSprints(sprintsLoadedMsg{}); cmd != nil {
		t.Error("expected no load without sprints")
	}
	if m.loading || m.status != "no sprints" {
		t.Errorf("loading = %v, status = %q", m.loading, m.status)
	}
}

func TestCardsReady(t *testing.T) {
	t.Parallel()

	m, _ := loaded(t, Options{IsDone: func(s string) bool { return s == "Done" }})

	if m.loading {
		t.Error("still loading after cards arrived")
	}
	if len(m.cards) != 2 {
		t.Fatalf("cards = %d, want 2", len(m.cards))
	}
	if !m.cards[1].Done || !m.cards[1].Nested {
		t.Errorf("task row = %+v, want done and nested", m.cards[1])
	}
	if m.cards[0].URL != "https://example.test/1" {
		t.Errorf("URL = %q", m.cards[0].URL)
	}
	if m.status != "2 cards" {
		t.Errorf("status = %q, want %q", m.status, "2 cards")
	}
}

func TestCardsReady_StaleSprintIgnored(t *testing.T) {
	t.Parallel()

	m, _ := loaded(t, Options{})
	m.Update(cardsReadyMsg{res: enrich.Result{SprintID: "s1", Cards: []*workitem.WorkItem{card(9, "Bug", "Old", "New")}}})
	if len(m.cards) != 2 {
		t.Errorf("cards = %d, want the selected sprint's 2", len(m.cards))
	}
}

func TestCardsReady_Notes(t *testing.T) {
	t.Parallel()

	m, _ := loaded(t, Options{})
	m.Update(cardsReadyMsg{res: enrich.Result{
		SprintID: m.selected,
		Cards:    []*workitem.WorkItem{card(1, "Bug", "x", "New")},
		Missing:  []int{5},
		Cycles:   []enrich.CycleError{{CardID: 1, Chain: []int{1, 2, 1}}},
		Broken:   []enrich.BrokenChainError{{CardID: 1, ParentID: 9, Err: boards.ErrNotFound}},
	}})
	if want := "1 cards, 1 missing, 1 cyclic, 1 without ancestors"; m.status != want {
		t.Errorf("status = %q, want %q", m.status, want)
	}
}

func TestLoadFailed(t *testing.T) {
	t.Parallel()

	t.Run("transient error goes to status line", func(t *testing.T) {
		t.Parallel()

		m, _ := loaded(t, Options{})
		m.Update(loadFailedMsg{err: fmt.Errorf("sprint s2: %w", boards.ErrNetwork)})
		if m.mode != modeNormal || !m.failed {
			t.Errorf("mode = %v, failed = %v", m.mode, m.failed)
		}
		if !strings.Contains(m.status, "sprint s2") {
			t.Errorf("status = %q", m.status)
		}
	})

	t.Run("unauthorized blocks and quits on any key", func(t *testing.T) {
		t.Parallel()

		m, _ := loaded(t, Options{})
		m.Update(loadFailedMsg{err: fmt.Errorf("sprint s2: %w", boards.ErrUnauthorized)})
		if m.mode != modeFatal {
			t.Fatalf("mode = %v, want fatal", m.mode)
		}
		view := viewText(m)
		if !strings.Contains(view, "press any key to quit") {
			t.Errorf("fatal view missing hint:\n%s", view)
		}
		if !isQuit(press(m, "x")) {
			t.Error("any key should quit")
		}
	})
}

func TestQuit(t *testing.T) {
	t.Parallel()

	m, _ := loaded(t, Options{})
	if !isQuit(press(m, "q")) {
		t.Error("q should quit")
	}
}

func TestTabSwitchesPane(t *testing.T) {
	t.Parallel()

	m, _ := loaded(t, Options{})
	press(m, "tab")
	if m.focus != cardPane {
		t.Fatalf("focus = %v, want card pane", m.focus)
	}
	press(m, "down", "down", "down")
	if m.cardCursor != 1 {
		t.Errorf("card cursor = %d, want clamped to 1", m.cardCursor)
	}
	press(m, "tab")
	if m.focus != sprintPane {
		t.Errorf("focus = %v, want sprint pane", m.focus)
	}
}

func TestSelectSprintWithEnter(t *testing.T) {
	t.Parallel()

	m, sess := loaded(t, Options{})
	press(m, "down")
	cmd := press(m, "enter")
	if cmd == nil {
		t.Fatal("enter did not load a sprint")
	}
	cmd()

	if m.selected != "s1" {
		t.Errorf("selected = %q, want s1", m.selected)
	}
	if got := sess.selected[len(sess.selected)-1]; got != "s1" {
		t.Errorf("last SelectSprint = %q, want s1", got)
	}
	if m.focus != cardPane {
		t.Error("selecting a sprint should focus the cards")
	}
}

func TestSprintFilter(t *testing.T) {
	t.Parallel()

	m, sess := loaded(t, Options{})
	press(m, "/")
	if m.mode != modeFilter {
		t.Fatalf("mode = %v, want filter", m.mode)
	}
	press(m, "3")
	if m.sprintUI.Len() != 1 {
		t.Fatalf("visible sprints = %d, want 1", m.sprintUI.Len())
	}
	cmd := press(m, "enter")
	if cmd == nil {
		t.Fatal("enter in filter did not select")
	}
	cmd()
	if m.mode != modeNormal {
		t.Errorf("mode = %v, want normal", m.mode)
	}
	if got := sess.selected[len(sess.selected)-1]; got != "s3" {
		t.Errorf("selected = %q, want s3", got)
	}
}

func TestSprintFilter_EscClears(t *testing.T) {
	t.Parallel()

	m, _ := loaded(t, Options{})
	press(m, "/", "1", "esc")
	if m.mode != modeNormal || m.sprintUI.Filter() != "" {
		t.Errorf("mode = %v, filter = %q", m.mode, m.sprintUI.Filter())
	}
	if m.sprintUI.Len() != 3 {
		t.Errorf("visible sprints = %d, want 3", m.sprintUI.Len())
	}
}

func TestChangeState(t *testing.T) {
	t.Parallel()

	m, sess := loaded(t, Options{})
	press(m, "tab", "s")
	if m.mode != modeState {
		t.Fatalf("mode = %v, want state", m.mode)
	}
	if !strings.Contains(m.status, "a Active") {
		t.Errorf("status = %q, want state keys", m.status)
	}
	cmd := press(m, "a")
	if cmd == nil {
		t.Fatal("state key did not change state")
	}
	cmd()
	if diff := cmp.Diff([]string{"1:Active"}, sess.states); diff != "" {
		t.Errorf("SetCardState calls mismatch (-want +got):\n%s", diff)
	}
	if m.mode != modeNormal {
		t.Errorf("mode = %v, want normal", m.mode)
	}
}

func TestChangeState_UnknownKeyCancels(t *testing.T) {
	t.Parallel()

	m, sess := loaded(t, Options{})
	if cmd := press(m, "tab", "s", "x"); cmd != nil {
		t.Error("unknown state key should not act")
	}
	if m.mode != modeNormal || len(sess.states) != 0 {
		t.Errorf("mode = %v, states = %v", m.mode, sess.states)
	}
}

func TestMove(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		keys []string
		want string
	}{
		{"b moves to backlog", []string{"b"}, "1:" + session.Backlog},
		{"enter on first entry is backlog", []string{"enter"}, "1:" + session.Backlog},
		{"filtered sprint", []string{"1", "enter"}, "1:s1"},
		{"arrow navigation", []string{"down", "down", "enter"}, "1:s2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, sess := loaded(t, Options{})
			press(m, "tab", "m")
			if m.mode != modeMove {
				t.Fatalf("mode = %v, want move", m.mode)
			}
			cmd := press(m, tt.keys...)
			if cmd == nil {
				t.Fatal("picker did not move the card")
			}
			if msg, ok := cmd().(actionDoneMsg); !ok || msg.err != nil {
				t.Fatalf("move result = %+v", msg)
			}
			if diff := cmp.Diff([]string{tt.want}, sess.moves); diff != "" {
				t.Errorf("MoveCard calls mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMove_EscCancels(t *testing.T) {
	t.Parallel()

	m, sess := loaded(t, Options{})
	press(m, "tab", "m", "esc")
	if m.mode != modeNormal || len(sess.moves) != 0 {
		t.Errorf("mode = %v, moves = %v", m.mode, sess.moves)
	}
}

func TestLinks(t *testing.T) {
	t.Parallel()

	var opened, copied []string
	m, _ := loaded(t, Options{
		OpenURL: func(u string) error { opened = append(opened, u); return nil },
		CopyURL: func(string) error { return errors.New("no clipboard") },
	})
	press(m, "tab", "down")

	m.Update(press(m, "o")())
	if diff := cmp.Diff([]string{"https://example.test/2"}, opened); diff != "" {
		t.Errorf("opened mismatch (-want +got):\n%s", diff)
	}

	m.Update(press(m, "y")())
	if len(copied) != 0 || !m.failed || m.status != "no clipboard" {
		t.Errorf("copy failure not reported: failed = %v, status = %q", m.failed, m.status)
	}
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	m, sess := loaded(t, Options{})
	cmd := press(m, "r")
	if !m.loading {
		t.Error("refresh should show loading")
	}
	cmd()
	if sess.refresh != 1 {
		t.Errorf("Refresh calls = %d, want 1", sess.refresh)
	}
}

func TestListenerForwards(t *testing.T) {
	t.Parallel()

	var got []tea.Msg
	l := listener{send: func(msg tea.Msg) { got = append(got, msg) }}
	l.CardsReady(enrich.Result{SprintID: "s1"})
	l.Failed(boards.ErrNotFound)

	if len(got) != 2 {
		t.Fatalf("sent %d messages, want 2", len(got))
	}
	if msg, ok := got[0].(cardsReadyMsg); !ok || msg.res.SprintID != "s1" {
		t.Errorf("first message = %#v", got[0])
	}
	if msg, ok := got[1].(loadFailedMsg); !ok || !errors.Is(msg.err, boards.ErrNotFound) {
		t.Errorf("second message = %#v", got[1])
	}
}

func TestView(t *testing.T) {
	t.Parallel()

	m, _ := loaded(t, Options{})
	m.Update(tea.WindowSizeMsg{Width: 160, Height: 20})
	press(m, "tab")

	view := viewText(m)
	for _, want := range []string{"proj / team", "Sprint 2", "Login", "  Form", "2 cards", "cache 3 hit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	press(m, "m")
	view = viewText(m)
	if !strings.Contains(view, "Move #1 to") || !strings.Contains(view, "Backlog") {
		t.Errorf("picker view:\n%s", view)
	}
}

// viewText returns the rendered dashboard without escape sequences.
func viewText(m *Model) string {
	return ansi.Strip(fmt.Sprint(m.View().Content))
}
