// Package boards is the remote-access layer for the Azure DevOps Boards REST
// API. It covers the two surfaces abt needs:
//
//   - Work item lookup: single and batched retrieval, single-field patches,
//     and WIQL queries (workitems.go).
//   - Iterations: the team's sprint list and the work item references
//     scheduled in a sprint (iterations.go).
//
// # Errors
//
// Every method returns errors from a small taxonomy so callers can decide
// per error what to show:
//
//   - [ErrNotFound]: the referenced id does not exist (HTTP 404)
//   - [ErrUnauthorized]: the token is invalid or expired (HTTP 401/403)
//   - [*RateLimitError]: throttled, carries the Retry-After hint (HTTP 429)
//   - [*NetworkError]: the request never got a response
//
// Use [errors.Is] / [errors.As]; [IsFatal] reports errors that should end
// the session.
//
// # Retries
//
// A request that fails at the transport level is retried once. A throttled
// request is retried after the backend's Retry-After delay, up to
// Options.MaxRateLimitRetries times. Nothing else is retried.
//
// Never talk to the backend outside this package.
package boards
