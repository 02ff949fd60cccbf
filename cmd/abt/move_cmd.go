package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphi011/abt/internal/output"
	"github.com/raphi011/abt/internal/session"
	"github.com/raphi011/abt/internal/ui/prompt"
	"github.com/raphi011/abt/internal/workitem"
)

func newMoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "move <card> [sprint|backlog]",
		Short:   "Move a card to a sprint or the backlog",
		Aliases: []string{"mv"},
		GroupID: GroupCards,
		Args:    cobra.RangeArgs(1, 2),
		Long: `Move a card to another sprint, or out of every sprint into the backlog.

The sprint may be given by id, name or path; @current picks the current
sprint. Without a target, a picker of sprints is shown.`,
		Example: `  abt move 123 "Sprint 43"   # By name
  abt move 123 @current      # Into the current sprint
  abt move 123 backlog       # Back to the backlog
  abt move 123               # Pick interactively`,
		ValidArgsFunction: completeMoveArgs,
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

			target := ""
			if len(args) == 2 {
				target, err = resolveMoveTarget(ctx, sess, args[1])
			} else {
				target, err = pickMoveTarget(ctx, sess)
			}
			if err != nil || target == "" {
				return err
			}

			w, err := withSpinner(ctx, fmt.Sprintf("Moving #%d", id), func() (*workitem.WorkItem, error) {
				return sess.MoveCard(ctx, id, target)
			})
			if err != nil {
				return err
			}
			output.FromContext(ctx).Printf("#%d %s → %s\n", w.ID, w.Fields.Title(), w.Fields.IterationPath())
			return nil
		},
	}

	return cmd
}

// resolveMoveTarget maps a sprint argument to the sprint id MoveCard takes.
func resolveMoveTarget(ctx context.Context, sess *session.Session, arg string) (string, error) {
	if strings.EqualFold(arg, session.Backlog) {
		return session.Backlog, nil
	}
	sprint, err := sess.ResolveSprintArg(ctx, arg)
	if err != nil {
		return "", err
	}
	return sprint.ID, nil
}

// pickMoveTarget shows the backlog and every sprint. It returns "" when
// the user cancels.
func pickMoveTarget(ctx context.Context, sess *session.Session) (string, error) {
	if !isTerminal(os.Stdin) {
		return "", fmt.Errorf("target sprint is required when not running in a terminal")
	}
	sprints, err := sess.Sprints(ctx)
	if err != nil {
		return "", err
	}

	opts := []prompt.Option{{Label: "Backlog", Value: session.Backlog}}
	for _, s := range sprints {
		hint := s.Path
		if s.IsCurrent() {
			hint += " (current)"
		}
		opts = append(opts, prompt.Option{Label: s.Name, Value: s.ID, Hint: hint})
	}
	res, err := prompt.Select("Move to", opts)
	if err != nil || res.Cancelled {
		return "", err
	}
	return res.Value, nil
}
