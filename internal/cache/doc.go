// Package cache memoizes remote work item and sprint-content lookups for
// one abt session.
//
// # Keys
//
// Work items are stored under [ItemKey] (id, requested field subset, expand
// mode); sprint contents under [SprintKey] (project, team, sprint id).
// Requests with equal keys are served from one stored result; requests that
// differ in any component are independent. The team's sprint list is never
// cached.
//
// # Batches
//
// [Cache.FetchBatch] partitions the requested ids into cached and unknown,
// fetches the unknown ones in chunks of at most [boards.MaxBatchSize], and
// returns items in input order. If any chunk fails nothing from that call
// is stored.
//
// # Concurrency
//
// The cache is safe for concurrent use. Each uncached key has at most one
// remote fetch in flight; other callers wait for it. [Cache.Reset] swaps in
// a new generation: fetches still running against the old generation
// complete, but their results are dropped with it.
//
// Nothing is persisted.
package cache
