package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/raphi011/abt/internal/output"
	"github.com/raphi011/abt/internal/session"
	"github.com/raphi011/abt/internal/ui/prompt"
	"github.com/raphi011/abt/internal/workitem"
)

func newStateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "state <card> [state]",
		Short:   "Change a card's state",
		GroupID: GroupCards,
		Args:    cobra.RangeArgs(1, 2),
		Long: `Change a card's state.

The state may be a full state name or one of the configured state keys
(see [[states]] in the config). Without a state, a picker of the
configured states is shown.`,
		Example: `  abt state 123 Active   # By name
  abt state 123 a        # By configured key
  abt state 123          # Pick interactively`,
		ValidArgsFunction: completeStateArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := session.ParseCardID(args[0])
			if err != nil {
				return err
			}

			var state string
			if len(args) == 2 {
				state = args[1]
				if full, ok := cfg.StateForKey(state); ok {
					state = full
				}
			} else {
				state, err = pickState()
				if err != nil || state == "" {
					return err
				}
			}

			sess, err := newSession(session.Options{})
			if err != nil {
				return err
			}
			w, err := withSpinner(ctx, fmt.Sprintf("Setting #%d to %s", id, state), func() (*workitem.WorkItem, error) {
				return sess.SetCardState(ctx, id, state)
			})
			if err != nil {
				return err
			}
			output.FromContext(ctx).Printf("#%d %s → %s\n", w.ID, w.Fields.Title(), w.Fields.State())
			return nil
		},
	}

	return cmd
}

// pickState asks for one of the configured states. It returns "" when the
// user cancels.
func pickState() (string, error) {
	if !isTerminal(os.Stdin) {
		return "", fmt.Errorf("state is required when not running in a terminal")
	}
	opts := make([]prompt.Option, len(cfg.States))
	for i, s := range cfg.States {
		opts[i] = prompt.Option{Label: s.State, Value: s.State, Hint: s.Key}
	}
	res, err := prompt.Select("New state", opts)
	if err != nil || res.Cancelled {
		return "", err
	}
	return res.Value, nil
}
