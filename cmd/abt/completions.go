package main

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphi011/abt/internal/config"
	"github.com/raphi011/abt/internal/session"
)

// completionConfig loads the config for shell completion, which runs
// without the usual setup. It returns false when no usable config exists.
func completionConfig() bool {
	if cfg != nil {
		return true
	}
	workDir, _ := os.Getwd()
	loaded, err := config.Load(config.LoadOptions{Path: configPath, WorkDir: workDir})
	if err != nil || loaded.Validate() != nil {
		return false
	}
	cfg = &loaded
	return true
}

// sprintCandidates lists sprint names, @current and optionally the backlog.
func sprintCandidates(ctx context.Context, toComplete string, backlog bool) []string {
	if ctx == nil {
		ctx = context.Background()
	}
	candidates := []string{session.CurrentSprint}
	if backlog {
		candidates = append(candidates, session.Backlog)
	}
	if completionConfig() {
		if sess, err := newSession(session.Options{}); err == nil {
			if sprints, err := sess.Sprints(ctx); err == nil {
				for _, s := range sprints {
					candidates = append(candidates, s.Name)
				}
			}
		}
	}
	return filterPrefix(candidates, toComplete)
}

// completeSprints completes the sprint argument of cards.
func completeSprints(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return sprintCandidates(cmd.Context(), toComplete, false), cobra.ShellCompDirectiveNoFileComp
}

// completeMoveArgs completes the target of move.
func completeMoveArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 1 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return sprintCandidates(cmd.Context(), toComplete, true), cobra.ShellCompDirectiveNoFileComp
}

// completeStateArgs completes the state of state from the configured states.
func completeStateArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 1 || !completionConfig() {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var candidates []string
	for _, s := range cfg.States {
		candidates = append(candidates, s.State+"\t"+s.Key)
	}
	return filterPrefix(candidates, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// filterPrefix keeps candidates starting with prefix, ignoring case.
// Descriptions after a tab are not matched.
func filterPrefix(candidates []string, prefix string) []string {
	var matches []string
	for _, c := range candidates {
		value, _, _ := strings.Cut(c, "\t")
		if strings.HasPrefix(strings.ToLower(value), strings.ToLower(prefix)) {
			matches = append(matches, c)
		}
	}
	return matches
}
