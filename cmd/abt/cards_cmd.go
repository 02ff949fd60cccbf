package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphi011/abt/internal/config"
	"github.com/raphi011/abt/internal/format"
	"github.com/raphi011/abt/internal/log"
	"github.com/raphi011/abt/internal/output"
	"github.com/raphi011/abt/internal/session"
	"github.com/raphi011/abt/internal/ui/progress"
)

func newCardsCmd() *cobra.Command {
	var (
		outFormat string
		current   bool
	)

	cmd := &cobra.Command{
		Use:     "cards [sprint]",
		Short:   "List a sprint's cards with their parents",
		Aliases: []string{"ls"},
		GroupID: GroupBoard,
		Args:    cobra.MaximumNArgs(1),
		Long: `List the cards of a sprint, enriched with their parent Feature and Epic
and the sprint each card was first seen in.

The sprint may be given by id, name or path. Without an argument, or with
--current, the sprint the backend marks as current is used.

Tasks and cards whose parent is in the same sprint are indented under it.
Cards in a done state are dimmed.`,
		Example: `  abt cards                       # Current sprint
  abt cards "Sprint 42"           # By name
  abt cards 'Project\Sprint 42'   # By iteration path
  abt cards --format yaml         # YAML for scripts`,
		ValidArgsFunction: completeSprints,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			if err := config.ValidateFormat(outFormat); err != nil {
				return err
			}

			arg := session.CurrentSprint
			if len(args) == 1 && !current {
				arg = args[0]
			}

			var bar *progress.ProgressBar
			opts := session.Options{}
			if showProgress(ctx) {
				bar = progress.NewProgressBar(0, "Resolving cards")
				opts.Progress = bar.SetProgress
			}
			sess, err := newSession(opts)
			if err != nil {
				return err
			}

			sprint, err := sess.ResolveSprintArg(ctx, arg)
			if err != nil {
				return err
			}
			l.Debug("listing cards", "sprint", sprint.ID, "path", sprint.Path)

			if bar != nil {
				bar.Start()
			}
			res, err := sess.SelectSprint(ctx, sprint.ID)
			if bar != nil {
				bar.Stop()
			}
			if err != nil {
				return err
			}

			if len(res.Missing) > 0 {
				l.Printf("Warning: %d cards no longer exist: %v\n", len(res.Missing), res.Missing)
			}
			for _, c := range res.Cycles {
				l.Printf("Warning: %v\n", &c)
			}
			for _, b := range res.Broken {
				l.Printf("Warning: %v\n", &b)
			}

			rows := format.CardRows(res.Cards, cardOptions(sess))
			if outFormat == output.FormatTable && len(rows) > 0 {
				l.Printf("%s: %d cards\n", sprintLabel(sprint), len(rows))
			}
			return printRows(ctx, outFormat, rows, fmt.Sprintf("No cards in %s", sprintLabel(sprint)), renderCards)
		},
	}

	addFormatFlag(cmd, &outFormat)
	cmd.Flags().BoolVar(&current, "current", false, "Use the current sprint, ignoring the argument")
	return cmd
}
