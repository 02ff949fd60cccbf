// Package format turns enriched work items and sprints into display rows.
//
// Rows are shared by the static tables of the CLI, the --format json/yaml
// output and the dashboard, so all three agree on placeholders, indentation
// and the done-state flag.
//
// # Card Rows
//
//   - Title is indented when the card is a Task, or when its parent is part
//     of the same card set.
//   - Assigned shows the assignee's first name, "-" when unassigned.
//   - Feature, Epic and Initial show "unknown" when enrichment found nothing.
//   - Done is set for states listed in done_states.
package format
