package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphi011/abt/internal/config"
	"github.com/raphi011/abt/internal/format"
	"github.com/raphi011/abt/internal/session"
	"github.com/raphi011/abt/internal/workitem"
)

func newChildrenCmd() *cobra.Command {
	var outFormat string

	cmd := &cobra.Command{
		Use:     "children <card>",
		Short:   "List a card's children",
		GroupID: GroupCards,
		Args:    cobra.ExactArgs(1),
		Long: `List the direct children of a card, enriched like sprint cards.

Children that no longer exist are skipped.`,
		Example: `  abt children 42          # Stories of a feature
  abt children 42 -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := config.ValidateFormat(outFormat); err != nil {
				return err
			}
			id, err := session.ParseCardID(args[0])
			if err != nil {
				return err
			}

			sess, err := newSession(session.Options{})
			if err != nil {
				return err
			}
			children, err := withSpinner(ctx, fmt.Sprintf("Loading children of #%d", id), func() ([]*workitem.WorkItem, error) {
				return sess.Children(ctx, id)
			})
			if err != nil {
				return err
			}
			rows := format.CardRows(children, cardOptions(sess))
			return printCards(ctx, outFormat, rows, fmt.Sprintf("#%d has no children", id))
		},
	}

	addFormatFlag(cmd, &outFormat)
	return cmd
}
