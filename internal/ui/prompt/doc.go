// Package prompt provides simple interactive prompts.
//
// Prompts render to stderr so stdout stays usable for piping. Callers
// check that stdin is a terminal before prompting.
//
// Available prompts:
//   - [Confirm]: Yes/No confirmation prompt
//   - [Select]: Single selection from a filterable list
package prompt

import (
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/colorprofile"
)

// run shows model on stderr and returns the final model.
func run(model tea.Model) (tea.Model, error) {
	// Detect color profile for stderr (handles piped output, NO_COLOR, etc.)
	profile := colorprofile.Detect(os.Stderr, os.Environ())
	p := tea.NewProgram(model,
		tea.WithOutput(os.Stderr),
		tea.WithColorProfile(profile),
	)
	return p.Run()
}
