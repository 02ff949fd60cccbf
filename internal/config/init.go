package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/raphi011/abt/internal/storage"
)

// ErrExists is returned by Init when the file exists and force is false.
var ErrExists = errors.New("config file already exists")

const defaultConfig = `# abt configuration

# Board to show. All four settings are required; each can also come from
# the environment (ABT_ORGANISATION, ABT_PROJECT, ABT_TEAM, ABT_TOKEN).
# organisation = "my-org"
# project = "My Project"
# team = "My Team"

# Personal access token with "Work Items (Read & Write)" scope.
# token = ""

# Service root (ABT_BASE_URL). Change for Azure DevOps Server.
# base_url = "https://dev.azure.com"

# "pat" sends the token as Basic auth, "bearer" as an OAuth bearer token.
# auth = "pat"

# Per-request timeout.
# timeout = "30s"

# Parent chains resolved in parallel, and the maximum chain depth.
# concurrency = 4
# max_depth = 32

# Keys of the dashboard's change-state mode (press "s", then the key).
# [[states]]
# key = "n"
# state = "New"
#
# [[states]]
# key = "a"
# state = "Active"
#
# [[states]]
# key = "d"
# state = "Development Completed"
#
# [[states]]
# key = "c"
# state = "Closed"

# States rendered dimmed in card tables.
# done_states = ["Development Completed", "Ready for UAT", "Closed", "Removed"]

# Theme
# [theme]
# name = "default"   # none, default, dracula, nord, gruvbox, catppuccin
# mode = "auto"      # auto, light, dark
# accent = "#ff79c6" # override single colors: primary, accent, success, error, muted, normal, info, warning
`

// DefaultConfig returns the commented config file written by Init.
func DefaultConfig() string {
	return defaultConfig
}

// Init creates a default config file at path, or at DefaultPath when path
// is empty. If force is true, overwrites an existing file.
// Returns the path to the created file.
func Init(path string, force bool) (string, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return "", err
		}
		path = p
	}
	path, err := expandPath(path)
	if err != nil {
		return "", err
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("%w: %s", ErrExists, path)
		}
	}

	if err := storage.WriteFile(path, []byte(defaultConfig), 0o600); err != nil {
		return "", err
	}
	return path, nil
}
