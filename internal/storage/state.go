package storage

import (
	"errors"
	"os"
	"path/filepath"
)

// StateFileName is the dashboard state file inside Dir.
const StateFileName = "state.json"

// State is the dashboard's remembered UI state. It never holds work item
// data.
type State struct {
	// LastSprint maps "organisation/project/team" to the sprint id that
	// was selected when the dashboard last quit.
	LastSprint map[string]string `json:"last_sprint,omitempty"`
}

// StateKey builds the LastSprint key for a team.
func StateKey(organisation, project, team string) string {
	return organisation + "/" + project + "/" + team
}

// DefaultStatePath returns ~/.config/abt/state.json.
func DefaultStatePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, StateFileName), nil
}

// LoadState reads the state file. A missing file yields an empty state.
func LoadState(path string) (State, error) {
	var s State
	if err := LoadJSON(path, &s); err != nil && !errors.Is(err, os.ErrNotExist) {
		return State{}, err
	}
	if s.LastSprint == nil {
		s.LastSprint = make(map[string]string)
	}
	return s, nil
}

// SaveState writes the state file atomically.
func SaveState(path string, s State) error {
	return SaveJSON(path, s)
}
