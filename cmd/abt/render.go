package main

import (
	"context"

	"github.com/raphi011/abt/internal/format"
	"github.com/raphi011/abt/internal/log"
	"github.com/raphi011/abt/internal/output"
	"github.com/raphi011/abt/internal/ui/static"
)

func renderCards(rows []format.CardRow) string     { return static.RenderCards(rows) }
func renderSprints(rows []format.SprintRow) string { return static.RenderSprints(rows) }

// printRows writes rows as JSON/YAML, or as a table rendered by table.
// An empty table prints empty to stderr instead.
func printRows[R any](ctx context.Context, f string, rows []R, empty string, table func([]R) string) error {
	out := output.FromContext(ctx)
	if f != output.FormatTable {
		if rows == nil {
			rows = []R{}
		}
		return out.Encode(f, rows)
	}
	if len(rows) == 0 {
		log.FromContext(ctx).Println(empty)
		return nil
	}
	out.Print(table(rows))
	return nil
}
