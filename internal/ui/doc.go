// Package ui provides terminal UI helpers shared by the CLI and the
// dashboard.
//
// Subpackages hold the components:
//
//   - styles: theme and shared lipgloss styles
//   - static: non-interactive tables
//   - progress: spinner and progress bar on stderr
//   - prompt: confirm and select prompts
//   - dashboard: the interactive board
//
// This package itself only hands card links to the desktop: [OpenURL]
// starts the system browser and [CopyURL] writes to the clipboard.
package ui
