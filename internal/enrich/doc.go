// Package enrich turns a sprint's card references into display-ready work
// items.
//
// For every card the [Engine] walks System.Parent upwards and records each
// ancestor as a synthetic "Parent <Type>" field holding its id and title;
// the immediate parent is also stored under "Parent". A card with a Feature
// parent under an Epic therefore carries both "Parent Feature" and
// "Parent Epic".
//
// All lookups go through the session cache, so resolving the same sprint
// twice, or cards that share ancestors, costs no extra round-trips. The
// cache's entries are never mutated; enrichment always works on a copy,
// which makes it idempotent.
//
// Chain walks are bounded by a visited set and a maximum depth. A repeated
// id truncates the chain and is reported as a [*CycleError].
//
// The "Initial Sprint" field is derived from a [SprintHistory]: the earliest
// sprint in which a card was seen during this session. It is provenance for
// display only, not an authoritative record.
package enrich
