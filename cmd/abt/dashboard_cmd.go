package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/raphi011/abt/internal/log"
	"github.com/raphi011/abt/internal/session"
	"github.com/raphi011/abt/internal/storage"
	"github.com/raphi011/abt/internal/ui"
	"github.com/raphi011/abt/internal/ui/dashboard"
)

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "dashboard",
		Short:   "Open the interactive dashboard",
		Aliases: []string{"ui"},
		GroupID: GroupBoard,
		Args:    cobra.NoArgs,
		Long: `Open the interactive dashboard. This is also what abt does without a
subcommand.

The left pane lists the team's sprints, the right pane the selected
sprint's cards. The sprint selected on quit is selected again on the
next start.

Keys:
  tab      switch pane          /  filter sprints
  enter    select sprint        r  refresh
  s        change card state    m  move card to a sprint or the backlog
  o        open card in browser y  copy card link
  q        quit`,
		Example: `  abt             # Open the dashboard
  abt dashboard   # Same`,
		RunE: runDashboard,
	}
}

func runDashboard(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if !isTerminal(os.Stdout) {
		return errors.New("the dashboard needs a terminal; use 'abt cards' for scripted output")
	}

	sess, err := newSession(session.Options{})
	if err != nil {
		return err
	}

	// Stderr belongs to the dashboard; diagnostics only reach --log-file.
	l := log.FromContext(ctx)
	ctx = log.WithLogger(ctx, l.Silent())

	statePath, err := storage.DefaultStatePath()
	if err != nil {
		return err
	}
	st, err := storage.LoadState(statePath)
	if err != nil {
		l.Warn("ignoring unreadable dashboard state", "path", statePath, "error", err)
		st = storage.State{LastSprint: make(map[string]string)}
	}
	key := storage.StateKey(cfg.Organisation, cfg.Project, cfg.Team)

	err = dashboard.Run(ctx, sess, dashboard.Options{
		States:        cfg.States,
		IsDone:        cfg.IsDone,
		InitialSprint: st.LastSprint[key],
		OnSelect:      func(id string) { st.LastSprint[key] = id },
		OpenURL:       ui.OpenURL,
		CopyURL:       ui.CopyURL,
	})

	if serr := storage.SaveState(statePath, st); serr != nil {
		l.Warn("could not save dashboard state", "path", statePath, "error", serr)
	}
	return err
}
