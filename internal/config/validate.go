package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
)

// Valid enum values for configuration fields.
var (
	ValidAuthModes  = []string{"pat", "bearer"}
	ValidThemeNames = []string{"none", "default", "dracula", "nord", "gruvbox", "catppuccin"}
	ValidThemeModes = []string{"auto", "light", "dark"}
	ValidFormats    = []string{"table", "json", "yaml"}
)

// ValidateFormat validates an output format flag value.
func ValidateFormat(format string) error {
	return validateEnum(format, "format", ValidFormats)
}

// Validate reports missing connection settings.
func (c *Config) Validate() error {
	for _, f := range []struct {
		name  string
		value string
		env   string
	}{
		{"organisation", c.Organisation, EnvOrganisation},
		{"project", c.Project, EnvProject},
		{"team", c.Team, EnvTeam},
		{"token", c.Token, EnvToken},
	} {
		if strings.TrimSpace(f.value) == "" {
			return &Error{Field: f.name, Reason: fmt.Sprintf("not set (set it in the config file or via %s)", f.env)}
		}
	}
	return nil
}

// validateValues checks the format of every field that is set.
func (c *Config) validateValues() error {
	if err := validateEnum(c.Auth, "auth", ValidAuthModes); err != nil {
		return err
	}
	if err := validateEnum(c.Theme.Name, "theme.name", ValidThemeNames); err != nil {
		return err
	}
	if err := validateEnum(c.Theme.Mode, "theme.mode", ValidThemeModes); err != nil {
		return err
	}
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return &Error{Field: "timeout", Reason: fmt.Sprintf("invalid duration %q", c.Timeout), Err: err}
		}
		if d <= 0 {
			return &Error{Field: "timeout", Reason: fmt.Sprintf("must be positive, got %s", d)}
		}
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return &Error{Field: "base_url", Reason: fmt.Sprintf("invalid URL %q", c.BaseURL), Err: err}
		}
	}
	if c.Concurrency < 0 {
		return &Error{Field: "concurrency", Reason: "must not be negative"}
	}
	if c.MaxDepth < 0 {
		return &Error{Field: "max_depth", Reason: "must not be negative"}
	}

	keys := make(map[string]bool, len(c.States))
	for i, s := range c.States {
		field := fmt.Sprintf("states[%d]", i)
		if len([]rune(s.Key)) != 1 {
			return &Error{Field: field, Reason: fmt.Sprintf("key must be a single character, got %q", s.Key)}
		}
		if strings.TrimSpace(s.State) == "" {
			return &Error{Field: field, Reason: "state is empty"}
		}
		if keys[s.Key] {
			return &Error{Field: field, Reason: fmt.Sprintf("key %q bound twice", s.Key)}
		}
		keys[s.Key] = true
	}
	return nil
}

// validateEnum checks that value (if non-empty) is one of the allowed values.
// Returns a formatted error mentioning the field name and allowed options.
func validateEnum(value, field string, allowed []string) error {
	if value == "" {
		return nil
	}
	if !slices.Contains(allowed, value) {
		return &Error{Field: field, Reason: fmt.Sprintf("invalid value %q: must be %s", value, formatOptions(allowed))}
	}
	return nil
}

// formatOptions formats a list of allowed values for error messages.
// E.g., ["a", "b", "c"] -> `"a", "b", or "c"`
func formatOptions(opts []string) string {
	quoted := make([]string, len(opts))
	for i, o := range opts {
		quoted[i] = fmt.Sprintf("%q", o)
	}
	if len(quoted) <= 2 {
		return strings.Join(quoted, " or ")
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + ", or " + quoted[len(quoted)-1]
}
