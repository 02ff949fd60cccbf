package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// legacyKeys maps config.txt keys to config fields.
var legacyKeys = map[string]func(*Config) *string{
	"ORGANISATION": func(c *Config) *string { return &c.Organisation },
	"PROJECT":      func(c *Config) *string { return &c.Project },
	"TEAM":         func(c *Config) *string { return &c.Team },
	"TOKEN":        func(c *Config) *string { return &c.Token },
}

// applyLegacy reads KEY = "value" lines from path. A missing file is ignored.
func applyLegacy(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		key, value, ok := strings.Cut(text, "=")
		if !ok {
			return &Error{Field: LegacyFileName, Reason: fmt.Sprintf("line %d: expected KEY = \"value\"", line)}
		}
		field, known := legacyKeys[strings.TrimSpace(key)]
		if !known {
			continue
		}
		*field(cfg) = strings.Trim(strings.TrimSpace(value), `"'`)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}
