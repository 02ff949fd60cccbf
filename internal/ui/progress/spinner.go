package progress

import (
	"fmt"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/raphi011/abt/internal/ui/styles"
)

// messageUpdate changes the spinner message.
type messageUpdate string

// Spinner shows an indeterminate activity indicator with a message.
type Spinner struct {
	ind     indicator
	message string
}

type spinnerModel struct {
	spinner spinner.Model
	message string
	updates <-chan tea.Msg
}

func (m spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitFor(m.updates))
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messageUpdate:
		m.message = string(msg)
		return m, waitFor(m.updates)
	case tea.KeyPressMsg:
		return m, tea.Quit
	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m spinnerModel) View() tea.View {
	if m.message == "" {
		return tea.NewView("")
	}
	return tea.NewView(fmt.Sprintf("%s %s", m.spinner.View(), m.message))
}

// NewSpinner creates a new spinner with the given message
func NewSpinner(message string) *Spinner {
	return &Spinner{ind: newIndicator(), message: message}
}

// Start begins the spinner animation
func (s *Spinner) Start() {
	s.ind.start(func(updates <-chan tea.Msg) tea.Model {
		sp := spinner.New()
		sp.Spinner = spinner.Dot
		sp.Style = styles.PrimaryStyle
		return spinnerModel{spinner: sp, message: s.message, updates: updates}
	})
}

// UpdateMessage changes the spinner message.
func (s *Spinner) UpdateMessage(message string) {
	if !s.ind.send(messageUpdate(message)) {
		s.message = message
	}
}

// Stop stops the spinner and clears the line.
func (s *Spinner) Stop() {
	s.ind.stop()
}
