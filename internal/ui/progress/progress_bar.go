package progress

import (
	"fmt"
	"sync"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"

	"github.com/raphi011/abt/internal/ui/styles"
)

type progressUpdate struct {
	current, total int
}

// ProgressBar shows determinate progress, e.g. cards resolved out of total.
type ProgressBar struct {
	ind     indicator
	message string

	mu      sync.Mutex
	current int
	total   int
}

type progressBarModel struct {
	progress progress.Model
	message  string
	current  int
	total    int
	updates  <-chan tea.Msg
}

func (m progressBarModel) Init() tea.Cmd {
	return waitFor(m.updates)
}

func (m progressBarModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressUpdate:
		m.current, m.total = msg.current, msg.total
		return m, waitFor(m.updates)
	case tea.KeyPressMsg:
		return m, tea.Quit
	default:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}
}

func (m progressBarModel) View() tea.View {
	pct := percent(m.current, m.total)
	// [████████░░░░░░░░]  45% 9/20 Resolving cards
	return tea.NewView(fmt.Sprintf("%s %3d%% %d/%d %s",
		m.progress.ViewAs(pct), int(pct*100), m.current, m.total, m.message))
}

// percent returns current/total clamped to [0, 1].
func percent(current, total int) float64 {
	if total <= 0 {
		return 0
	}
	p := float64(current) / float64(total)
	return min(max(p, 0), 1)
}

// NewProgressBar creates a new progress bar with the given total and message.
// The total may be zero and set later through SetProgress.
func NewProgressBar(total int, message string) *ProgressBar {
	return &ProgressBar{ind: newIndicator(), total: total, message: message}
}

// Start begins the progress bar display.
func (p *ProgressBar) Start() {
	p.ind.start(func(updates <-chan tea.Msg) tea.Model {
		p.mu.Lock()
		defer p.mu.Unlock()
		return progressBarModel{
			progress: progress.New(
				progress.WithWidth(40),
				progress.WithoutPercentage(),
				progress.WithColors(styles.Primary, styles.Accent),
			),
			message: p.message,
			current: p.current,
			total:   p.total,
			updates: updates,
		}
	})
}

// SetProgress records current out of total. It is safe for concurrent use
// and matches the enrichment progress callback.
func (p *ProgressBar) SetProgress(current, total int) {
	p.mu.Lock()
	p.current, p.total = current, total
	p.mu.Unlock()

	p.ind.send(progressUpdate{current: current, total: total})
}

// Stop stops the progress bar and clears the line.
func (p *ProgressBar) Stop() {
	p.ind.stop()
}

// Total returns the total count for the progress bar.
func (p *ProgressBar) Total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

// Current returns the last recorded progress.
func (p *ProgressBar) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}
