// Package session is the single entry point the CLI and the dashboard use
// to talk to the backend.
//
// A [Session] bundles the boards client, the memoizing cache, the
// enrichment engine and the currently selected sprint. It is created once
// per process and passed explicitly; there is no package-level state.
//
// Mutations (state changes and sprint moves) patch the backend, drop the
// affected cache entries and re-resolve the selected sprint. Results and
// failures of sprint loads are reported to an optional [Listener].
package session
