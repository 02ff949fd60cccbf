package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/raphi011/abt/internal/config"
	"github.com/raphi011/abt/internal/format"
	"github.com/raphi011/abt/internal/session"
	"github.com/raphi011/abt/internal/ui/static"
	"github.com/raphi011/abt/internal/workitem"
)

func newEpicsCmd() *cobra.Command {
	var outFormat string

	cmd := &cobra.Command{
		Use:     "epics",
		Short:   "List the project's open epics",
		GroupID: GroupBoard,
		Args:    cobra.NoArgs,
		Long: `List the project's epics that are not removed.

Only list fields are loaded; epics are not enriched.`,
		Example: `  abt epics
  abt epics --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := config.ValidateFormat(outFormat); err != nil {
				return err
			}

			sess, err := newSession(session.Options{})
			if err != nil {
				return err
			}
			epics, err := withSpinner(ctx, "Loading epics", func() ([]*workitem.WorkItem, error) {
				return sess.Epics(ctx)
			})
			if err != nil {
				return err
			}

			rows := format.CardRows(epics, cardOptions(sess))
			return printRows(ctx, outFormat, rows, "No epics", renderEpics)
		},
	}

	addFormatFlag(cmd, &outFormat)
	return cmd
}

// renderEpics shows the columns that are filled without enrichment.
func renderEpics(rows []format.CardRow) string {
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = []string{strconv.Itoa(r.ID), r.State, r.Assigned, r.Title}
	}
	return static.RenderTable([]string{"ID", "State", "Assigned", "Title"}, cells)
}
