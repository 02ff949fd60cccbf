package main

import (
	"github.com/spf13/cobra"

	"github.com/raphi011/abt/internal/config"
	"github.com/raphi011/abt/internal/format"
	"github.com/raphi011/abt/internal/output"
	"github.com/raphi011/abt/internal/session"
	"github.com/raphi011/abt/internal/workitem"
)

func newSprintsCmd() *cobra.Command {
	var outFormat string

	cmd := &cobra.Command{
		Use:     "sprints",
		Short:   "List the team's sprints",
		Aliases: []string{"iterations"},
		GroupID: GroupBoard,
		Args:    cobra.NoArgs,
		Long: `List the team's sprints, newest first.

The current sprint is highlighted in table output and marked with
"current": true in JSON and YAML.`,
		Example: `  abt sprints                # Table of sprints
  abt sprints --format json  # JSON for scripts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := config.ValidateFormat(outFormat); err != nil {
				return err
			}

			sess, err := newSession(session.Options{})
			if err != nil {
				return err
			}
			sprints, err := withSpinner(ctx, "Loading sprints", func() ([]workitem.Sprint, error) {
				return sess.Sprints(ctx)
			})
			if err != nil {
				return err
			}
			return printRows(ctx, outFormat, format.SprintRows(sprints), "No sprints", renderSprints)
		},
	}

	addFormatFlag(cmd, &outFormat)
	return cmd
}

// addFormatFlag registers --format with completion.
func addFormatFlag(cmd *cobra.Command, dst *string) {
	cmd.Flags().StringVarP(dst, "format", "o", output.FormatTable, "Output format: table, json, yaml")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(config.ValidFormats, cobra.ShellCompDirectiveNoFileComp))
}
