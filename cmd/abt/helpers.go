package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/raphi011/abt/internal/boards"
	"github.com/raphi011/abt/internal/format"
	"github.com/raphi011/abt/internal/log"
	"github.com/raphi011/abt/internal/session"
	"github.com/raphi011/abt/internal/ui/progress"
	"github.com/raphi011/abt/internal/workitem"
)

// newSession connects to the configured team.
func newSession(opts session.Options) (*session.Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := boards.NewClient(boards.Options{
		BaseURL:      cfg.BaseURL,
		Organisation: cfg.Organisation,
		Project:      cfg.Project,
		Team:         cfg.Team,
		Token:        cfg.Token,
		Auth:         cfg.Auth,
		Timeout:      cfg.TimeoutDuration(),
		UserAgent:    "abt/" + version,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("session started", "id", client.SessionID())

	if opts.Concurrency == 0 {
		opts.Concurrency = cfg.Concurrency
	}
	if opts.MaxDepth == 0 {
		opts.MaxDepth = cfg.MaxDepth
	}
	return session.New(client, opts), nil
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// showProgress reports whether progress indicators may draw on stderr.
func showProgress(ctx context.Context) bool {
	return !quiet && !log.FromContext(ctx).IsVerbose() && isTerminal(os.Stderr)
}

// withSpinner runs fn while a spinner shows msg on stderr.
func withSpinner[T any](ctx context.Context, msg string, fn func() (T, error)) (T, error) {
	if !showProgress(ctx) {
		return fn()
	}
	sp := progress.NewSpinner(msg)
	sp.Start()
	defer sp.Stop()
	return fn()
}

// cardOptions renders rows with the configured done states and links.
func cardOptions(s *session.Session) format.CardOptions {
	return format.CardOptions{IsDone: cfg.IsDone, URL: s.WebURL}
}

// printCards writes cards as a table or encoded rows.
func printCards(ctx context.Context, f string, rows []format.CardRow, empty string) error {
	return printRows(ctx, f, rows, empty, renderCards)
}

// sprintLabel names a sprint for messages.
func sprintLabel(s workitem.Sprint) string {
	if s.Name == "" {
		return s.ID
	}
	return fmt.Sprintf("%s (%s)", s.Name, s.Path)
}
