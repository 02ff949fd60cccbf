package main

import (
	"github.com/spf13/cobra"

	"github.com/raphi011/abt/internal/log"
	"github.com/raphi011/abt/internal/output"
	"github.com/raphi011/abt/internal/session"
	"github.com/raphi011/abt/internal/ui"
	"github.com/raphi011/abt/internal/workitem"
)

func newOpenCmd() *cobra.Command {
	var (
		copyURL  bool
		printURL bool
	)

	cmd := &cobra.Command{
		Use:     "open <card>",
		Short:   "Open a card in the browser",
		GroupID: GroupCards,
		Args:    cobra.ExactArgs(1),
		Long: `Open a card's web page in the default browser.

The card is looked up first, so unknown ids fail instead of opening a
broken page. Use --copy to put the link on the clipboard instead, or
--print to only print it.`,
		Example: `  abt open 123
  abt open '#123' --copy
  abt open 123 --print`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := session.ParseCardID(args[0])
			if err != nil {
				return err
			}

			sess, err := newSession(session.Options{})
			if err != nil {
				return err
			}
			if _, err := withSpinner(ctx, "Looking up card", func() (*workitem.WorkItem, error) {
				return sess.Card(ctx, id)
			}); err != nil {
				return err
			}

			url := sess.WebURL(id)
			switch {
			case printURL:
				output.FromContext(ctx).Println(url)
				return nil
			case copyURL:
				if err := ui.CopyURL(url); err != nil {
					return err
				}
				log.FromContext(ctx).Printf("Copied %s\n", url)
				return nil
			default:
				log.FromContext(ctx).Printf("Opening %s\n", url)
				return ui.OpenURL(url)
			}
		},
	}

	cmd.Flags().BoolVarP(&copyURL, "copy", "y", false, "Copy the link to the clipboard")
	cmd.Flags().BoolVarP(&printURL, "print", "p", false, "Print the link")
	cmd.MarkFlagsMutuallyExclusive("copy", "print")
	return cmd
}
