package dashboard

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/raphi011/abt/internal/boards"
	"github.com/raphi011/abt/internal/cache"
	"github.com/raphi011/abt/internal/config"
	"github.com/raphi011/abt/internal/enrich"
	"github.com/raphi011/abt/internal/format"
	"github.com/raphi011/abt/internal/log"
	"github.com/raphi011/abt/internal/session"
	"github.com/raphi011/abt/internal/workitem"
)

// Session is the part of session.Session the dashboard drives.
type Session interface {
	Project() string
	Team() string
	Sprints(ctx context.Context) ([]workitem.Sprint, error)
	SelectSprint(ctx context.Context, sprintID string) (enrich.Result, error)
	Refresh(ctx context.Context) (enrich.Result, error)
	SetCardState(ctx context.Context, cardID int, state string) (*workitem.WorkItem, error)
	MoveCard(ctx context.Context, cardID int, target string) (*workitem.WorkItem, error)
	WebURL(id int) string
	CacheStats() cache.Stats
	SetListener(l session.Listener)
}

// Options configures the dashboard.
type Options struct {
	// States are the change-state keys offered after "s".
	States []config.StateKey
	// IsDone reports states whose rows are dimmed.
	IsDone func(state string) bool
	// InitialSprint is selected on start when it still exists. Otherwise
	// the current sprint is selected.
	InitialSprint string
	// OnSelect is called with every sprint the user selects.
	OnSelect func(sprintID string)
	// OpenURL and CopyURL hand card links to the desktop.
	OpenURL func(url string) error
	CopyURL func(url string) error
}

type pane int

const (
	sprintPane pane = iota
	cardPane
)

// mode gates which keys are live.
type mode int

const (
	modeNormal mode = iota
	modeFilter      // editing the sprint filter
	modeState       // waiting for a change-state key
	modeMove        // move picker open
	modeFatal       // blocking error banner
)

// Messages.
type (
	sprintsLoadedMsg struct {
		sprints []workitem.Sprint
		err     error
	}
	cardsReadyMsg struct{ res enrich.Result }
	loadFailedMsg struct{ err error }
	actionDoneMsg struct {
		status string
		err    error
	}
)

// Model is the dashboard's bubbletea model.
type Model struct {
	ctx  context.Context
	sess Session
	opts Options

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	sprints  []workitem.Sprint // newest first
	sprintUI fuzzyList
	selected string // selected sprint id

	cards      []format.CardRow
	cardCursor int
	cardOffset int

	picker      fuzzyList
	pickTargets []string // picker index -> move target

	focus   pane
	mode    mode
	loading bool
	status  string
	failed  bool // status holds an error
	fatal   error

	width, height int
}

// New creates the dashboard model.
func New(ctx context.Context, sess Session, opts Options) *Model {
	if opts.IsDone == nil {
		opts.IsDone = func(string) bool { return false }
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		ctx:      ctx,
		sess:     sess,
		opts:     opts,
		keys:     defaultKeyMap(),
		help:     help.New(),
		spinner:  sp,
		sprintUI: newFuzzyList(nil),
		loading:  true,
		width:    120,
		height:   30,
	}
	m.sprintUI.emphasis = func(i int) bool { return m.sprints[i].IsCurrent() }
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadSprints())
}

func (m *Model) loadSprints() tea.Cmd {
	return func() tea.Msg {
		sprints, err := m.sess.Sprints(m.ctx)
		return sprintsLoadedMsg{sprints: sprints, err: err}
	}
}

// selectSprint loads a sprint. The outcome arrives through the session
// listener as cardsReadyMsg or loadFailedMsg.
func (m *Model) selectSprint(id string) tea.Cmd {
	m.selected = id
	m.loading = true
	if m.opts.OnSelect != nil {
		m.opts.OnSelect(id)
	}
	return func() tea.Msg {
		_, _ = m.sess.SelectSprint(m.ctx, id)
		return nil
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.scrollCards()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case sprintsLoadedMsg:
		return m, m.onSprints(msg)

	case cardsReadyMsg:
		m.onCards(msg.res)
		return m, nil

	case loadFailedMsg:
		m.loading = false
		m.fail(msg.err)
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.loading = false
			m.fail(msg.err)
		} else if msg.status != "" {
			m.setStatus(msg.status)
		}
		return m, nil

	case tea.KeyPressMsg:
		return m.onKey(msg)
	}
	return m, nil
}

func (m *Model) onSprints(msg sprintsLoadedMsg) tea.Cmd {
	if msg.err != nil {
		m.loading = false
		m.fail(msg.err)
		return nil
	}
	m.sprints = msg.sprints
	labels := make([]string, len(msg.sprints))
	for i, s := range msg.sprints {
		labels[i] = s.Name
	}
	m.sprintUI.SetLabels(labels)

	if len(m.sprints) == 0 {
		m.loading = false
		m.setStatus("no sprints")
		return nil
	}
	i := m.initialSprint()
	m.sprintUI.Select(i)
	return m.selectSprint(m.sprints[i].ID)
}

// initialSprint picks the remembered sprint, then the current one, then the
// newest.
func (m *Model) initialSprint() int {
	for i, s := range m.sprints {
		if s.ID == m.opts.InitialSprint {
			return i
		}
	}
	for i, s := range m.sprints {
		if s.IsCurrent() {
			return i
		}
	}
	return 0
}

func (m *Model) onCards(res enrich.Result) {
	if res.SprintID != m.selected {
		return
	}
	m.loading = false
	m.cards = format.CardRows(res.Cards, format.CardOptions{IsDone: m.opts.IsDone, URL: m.sess.WebURL})
	m.cardCursor = min(m.cardCursor, max(len(m.cards)-1, 0))
	m.scrollCards()

	parts := []string{fmt.Sprintf("%d cards", len(m.cards))}
	if n := len(res.Missing); n > 0 {
		parts = append(parts, fmt.Sprintf("%d missing", n))
	}
	if n := len(res.Cycles); n > 0 {
		parts = append(parts, fmt.Sprintf("%d cyclic", n))
	}
	if n := len(res.Broken); n > 0 {
		parts = append(parts, fmt.Sprintf("%d without ancestors", n))
	}
	m.setStatus(strings.Join(parts, ", "))
}

func (m *Model) setStatus(s string) {
	m.status, m.failed = s, false
}

func (m *Model) fail(err error) {
	log.FromContext(m.ctx).Debug("dashboard error", "error", err)
	if boards.IsFatal(err) {
		m.mode = modeFatal
		m.fatal = err
		return
	}
	m.status, m.failed = err.Error(), true
}

func (m *Model) onKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeFatal:
		return m, tea.Quit
	case modeFilter:
		return m, m.onFilterKey(msg)
	case modeState:
		return m, m.onStateKey(msg)
	case modeMove:
		return m, m.onMoveKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Tab):
		if m.focus == sprintPane {
			m.focus = cardPane
		} else {
			m.focus = sprintPane
		}
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refresh()
	case key.Matches(msg, m.keys.Cancel):
		m.sprintUI.SetFilter("")
		m.status, m.failed = "", false
	}

	if m.focus == sprintPane {
		return m, m.onSprintKey(msg)
	}
	return m, m.onCardKey(msg)
}

func (m *Model) onSprintKey(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Filter):
		m.mode = modeFilter
		return m.sprintUI.Focus()
	case key.Matches(msg, m.keys.Select):
		i, ok := m.sprintUI.Selected()
		if !ok {
			return nil
		}
		m.focus = cardPane
		m.cardCursor, m.cardOffset = 0, 0
		return m.selectSprint(m.sprints[i].ID)
	}
	return nil
}

func (m *Model) onFilterKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.sprintUI.Blur()
		m.sprintUI.SetFilter("")
		m.mode = modeNormal
		return nil
	case "enter":
		m.sprintUI.Blur()
		m.mode = modeNormal
		return m.onSprintKey(msg)
	case "up":
		m.sprintUI.Move(-1)
		return nil
	case "down":
		m.sprintUI.Move(1)
		return nil
	}
	return m.sprintUI.Update(msg)
}

func (m *Model) onCardKey(msg tea.KeyPressMsg) tea.Cmd {
	card, ok := m.currentCard()
	if !ok {
		return nil
	}
	switch {
	case key.Matches(msg, m.keys.State):
		if len(m.opts.States) == 0 {
			m.setStatus("no states configured")
			return nil
		}
		m.mode = modeState
		m.setStatus(m.statePrompt(card))
	case key.Matches(msg, m.keys.Move):
		m.openPicker()
	case key.Matches(msg, m.keys.Open):
		return m.linkAction(card, m.opts.OpenURL, "opened")
	case key.Matches(msg, m.keys.Copy):
		return m.linkAction(card, m.opts.CopyURL, "copied")
	}
	return nil
}

func (m *Model) statePrompt(card format.CardRow) string {
	opts := make([]string, len(m.opts.States))
	for i, s := range m.opts.States {
		opts[i] = s.Key + " " + s.State
	}
	return fmt.Sprintf("#%d state: %s (esc cancels)", card.ID, strings.Join(opts, "  "))
}

func (m *Model) onStateKey(msg tea.KeyPressMsg) tea.Cmd {
	m.mode = modeNormal
	card, ok := m.currentCard()
	if !ok {
		return nil
	}
	pressed := msg.String()
	for _, s := range m.opts.States {
		if s.Key != pressed {
			continue
		}
		m.loading = true
		m.setStatus(fmt.Sprintf("#%d → %s", card.ID, s.State))
		state := s.State
		return func() tea.Msg {
			_, err := m.sess.SetCardState(m.ctx, card.ID, state)
			return actionDoneMsg{err: err}
		}
	}
	m.setStatus("")
	return nil
}

func (m *Model) openPicker() {
	labels := []string{"Backlog"}
	m.pickTargets = []string{session.Backlog}
	for _, s := range m.sprints {
		labels = append(labels, s.Name)
		m.pickTargets = append(m.pickTargets, s.ID)
	}
	m.picker = newFuzzyList(labels)
	m.picker.Focus()
	m.mode = modeMove
}

func (m *Model) onMoveKey(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.picker.Blur()
		m.mode = modeNormal
		return nil
	case key.Matches(msg, m.keys.PickUp):
		m.picker.Move(-1)
		return nil
	case key.Matches(msg, m.keys.PickDown):
		m.picker.Move(1)
		return nil
	case key.Matches(msg, m.keys.Backlog) && m.picker.Filter() == "":
		return m.move(session.Backlog)
	case key.Matches(msg, m.keys.Select):
		i, ok := m.picker.Selected()
		if !ok {
			return nil
		}
		return m.move(m.pickTargets[i])
	}
	return m.picker.Update(msg)
}

func (m *Model) move(target string) tea.Cmd {
	m.picker.Blur()
	m.mode = modeNormal
	card, ok := m.currentCard()
	if !ok {
		return nil
	}
	m.loading = true
	m.setStatus(fmt.Sprintf("moving #%d", card.ID))
	return func() tea.Msg {
		_, err := m.sess.MoveCard(m.ctx, card.ID, target)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: fmt.Sprintf("moved #%d", card.ID)}
	}
}

func (m *Model) linkAction(card format.CardRow, fn func(string) error, done string) tea.Cmd {
	if fn == nil || card.URL == "" {
		return nil
	}
	url := card.URL
	return func() tea.Msg {
		if err := fn(url); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: done + " " + url}
	}
}

func (m *Model) refresh() tea.Cmd {
	m.loading = true
	m.setStatus("refreshing")
	return func() tea.Msg {
		_, _ = m.sess.Refresh(m.ctx)
		return nil
	}
}

func (m *Model) moveCursor(delta int) {
	if m.focus == sprintPane {
		m.sprintUI.Move(delta)
		return
	}
	if len(m.cards) == 0 {
		return
	}
	m.cardCursor = min(max(m.cardCursor+delta, 0), len(m.cards)-1)
	m.scrollCards()
}

// scrollCards keeps the cursor inside the visible card rows.
func (m *Model) scrollCards() {
	rows := m.cardRows()
	if m.cardCursor < m.cardOffset {
		m.cardOffset = m.cardCursor
	}
	if m.cardCursor >= m.cardOffset+rows {
		m.cardOffset = m.cardCursor - rows + 1
	}
	m.cardOffset = max(m.cardOffset, 0)
}

func (m *Model) currentCard() (format.CardRow, bool) {
	if m.cardCursor < 0 || m.cardCursor >= len(m.cards) {
		return format.CardRow{}, false
	}
	return m.cards[m.cardCursor], true
}

// listener forwards session notifications into the program.
type listener struct {
	send func(tea.Msg)
}

func (l listener) CardsReady(res enrich.Result) { l.send(cardsReadyMsg{res: res}) }
func (l listener) Failed(err error)             { l.send(loadFailedMsg{err: err}) }
