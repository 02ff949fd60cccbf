// Package config handles loading and validation of abt configuration.
//
// Configuration is read from ~/.config/abt/config.toml with environment
// variable overrides for the connection settings.
//
// # Configuration Sources (highest priority first)
//
//   - ABT_ORGANISATION, ABT_PROJECT, ABT_TEAM, ABT_TOKEN, ABT_BASE_URL env vars
//   - Config file (ABT_CONFIG or --config selects a different path)
//   - A legacy config.txt in the working directory (KEY = "value" lines)
//   - Default values
//
// # Key Settings
//
//   - organisation, project, team: which board to show (required)
//   - token: personal access token (required)
//   - base_url: service root, default https://dev.azure.com
//   - auth: "pat" (Basic auth) or "bearer"
//   - timeout: per-request timeout, e.g. "30s"
//   - done_states: states rendered dimmed in card tables
//
// # Quick States
//
// The dashboard's change-state mode binds keys to states:
//
//	[[states]]
//	key = "n"
//	state = "New"
//
// # Validation
//
// [Load] rejects malformed values (unknown auth mode, bad durations,
// unknown theme). Missing connection settings are reported by
// [Config.Validate] so that "abt config show" still works on a partial
// setup. All validation failures are *Error values matching [ErrConfig].
package config
