// Package storage provides atomic file writes under ~/.config/abt/.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Dir returns ~/.config/abt/ without creating it.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "abt"), nil
}

// WriteFile atomically writes data to path. It ensures the parent
// directory exists, writes to a temp file, then renames it into place.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, perm); err != nil {
		return err
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("rename %s: %w", tempPath, err)
	}
	return nil
}

// SaveJSON atomically writes data as indented JSON to path.
func SaveJSON(path string, data any) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return WriteFile(path, jsonData, 0o600)
}

// LoadJSON reads JSON from path into dest.
// Returns os.ErrNotExist if file doesn't exist (caller should handle).
func LoadJSON(path string, dest any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}
