package dashboard

import (
	"context"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/colorprofile"
)

// Run shows the dashboard until the user quits or ctx is cancelled.
func Run(ctx context.Context, sess Session, opts Options) error {
	m := New(ctx, sess, opts)

	profile := colorprofile.Detect(os.Stdout, os.Environ())
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithColorProfile(profile),
	)

	sess.SetListener(listener{send: p.Send})
	defer sess.SetListener(nil)

	_, err := p.Run()
	return err
}
