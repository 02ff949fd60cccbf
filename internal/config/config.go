package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/raphi011/abt/internal/storage"
)

// ErrConfig is matched by every configuration error.
var ErrConfig = errors.New("invalid configuration")

// Error reports a problem with one configuration field.
type Error struct {
	Field  string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Field == "" {
		return "config: " + e.Reason
	}
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrConfig }

// Environment variables.
const (
	EnvConfig       = "ABT_CONFIG"
	EnvOrganisation = "ABT_ORGANISATION"
	EnvProject      = "ABT_PROJECT"
	EnvTeam         = "ABT_TEAM"
	EnvToken        = "ABT_TOKEN"
	EnvBaseURL      = "ABT_BASE_URL"
)

// LegacyFileName is the pre-TOML config file read from the working directory.
const LegacyFileName = "config.txt"

// Defaults.
const (
	DefaultBaseURL = "https://dev.azure.com"
	DefaultAuth    = "pat"
	DefaultTimeout = 30 * time.Second
)

// ThemeConfig holds theme/color configuration for the UI
type ThemeConfig struct {
	Name    string `toml:"name" yaml:"name,omitempty"` // preset name: "default", "dracula", "nord", "gruvbox", "catppuccin"
	Mode    string `toml:"mode" yaml:"mode,omitempty"` // "auto", "light" or "dark"
	Primary string `toml:"primary" yaml:"primary,omitempty"`
	Accent  string `toml:"accent" yaml:"accent,omitempty"`
	Success string `toml:"success" yaml:"success,omitempty"`
	Error   string `toml:"error" yaml:"error,omitempty"`
	Muted   string `toml:"muted" yaml:"muted,omitempty"`
	Normal  string `toml:"normal" yaml:"normal,omitempty"`
	Info    string `toml:"info" yaml:"info,omitempty"`
	Warning string `toml:"warning" yaml:"warning,omitempty"`
}

// StateKey binds a dashboard key to a target state.
type StateKey struct {
	Key   string `toml:"key" yaml:"key"`
	State string `toml:"state" yaml:"state"`
}

// Config holds the abt configuration
type Config struct {
	Organisation string      `toml:"organisation" yaml:"organisation"`
	Project      string      `toml:"project" yaml:"project"`
	Team         string      `toml:"team" yaml:"team"`
	Token        string      `toml:"token" yaml:"token"`
	BaseURL      string      `toml:"base_url" yaml:"base_url"`
	Auth         string      `toml:"auth" yaml:"auth"`
	Timeout      string      `toml:"timeout" yaml:"timeout"`
	Concurrency  int         `toml:"concurrency" yaml:"concurrency,omitempty"`
	MaxDepth     int         `toml:"max_depth" yaml:"max_depth,omitempty"`
	States       []StateKey  `toml:"states" yaml:"states"`
	DoneStates   []string    `toml:"done_states" yaml:"done_states"`
	Theme        ThemeConfig `toml:"theme" yaml:"theme"`

	// Path is the file the config was read from, empty if none.
	Path string `toml:"-" yaml:"-"`
}

// DefaultStates are the change-state bindings used when none are configured.
var DefaultStates = []StateKey{
	{Key: "n", State: "New"},
	{Key: "a", State: "Active"},
	{Key: "d", State: "Development Completed"},
	{Key: "c", State: "Closed"},
}

// DefaultDoneStates are dimmed in card tables when none are configured.
var DefaultDoneStates = []string{"Development Completed", "Ready for UAT", "Closed", "Removed"}

// Default returns the default configuration
func Default() Config {
	return Config{
		BaseURL:    DefaultBaseURL,
		Auth:       DefaultAuth,
		Timeout:    DefaultTimeout.String(),
		States:     append([]StateKey(nil), DefaultStates...),
		DoneStates: append([]string(nil), DefaultDoneStates...),
	}
}

// TimeoutDuration returns the parsed timeout, or DefaultTimeout when unset.
func (c *Config) TimeoutDuration() time.Duration {
	if c.Timeout == "" {
		return DefaultTimeout
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return DefaultTimeout
	}
	return d
}

// IsDone reports whether state is one of the configured done states.
func (c *Config) IsDone(state string) bool {
	for _, s := range c.DoneStates {
		if strings.EqualFold(s, state) {
			return true
		}
	}
	return false
}

// StateForKey returns the state bound to key in change-state mode.
func (c *Config) StateForKey(key string) (string, bool) {
	for _, s := range c.States {
		if s.Key == key {
			return s.State, true
		}
	}
	return "", false
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.Token != "" {
		c.Token = "********"
	}
	return c
}

// DefaultPath returns ~/.config/abt/config.toml.
func DefaultPath() (string, error) {
	dir, err := storage.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LoadOptions controls where Load looks.
type LoadOptions struct {
	// Path overrides the config file location. ABT_CONFIG wins over it.
	Path string
	// WorkDir is searched for the legacy config.txt. Empty skips it.
	WorkDir string
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// Load reads the configuration from all sources.
// A missing default config file is not an error; a missing explicit one is.
func Load(opts LoadOptions) (Config, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	cfg := Default()

	if opts.WorkDir != "" {
		if err := applyLegacy(&cfg, filepath.Join(opts.WorkDir, LegacyFileName)); err != nil {
			return Default(), err
		}
	}

	path, explicit := opts.Path, opts.Path != ""
	if p := getenv(EnvConfig); p != "" {
		path, explicit = p, true
	}
	if path == "" {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		if err := applyFile(&cfg, path, explicit); err != nil {
			return Default(), err
		}
	}

	applyEnv(&cfg, getenv)

	if err := cfg.validateValues(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string, explicit bool) error {
	expanded, err := expandPath(path)
	if err != nil {
		return &Error{Field: "path", Reason: err.Error(), Err: err}
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	var file Config
	md, err := toml.Decode(string(data), &file)
	if err != nil {
		return &Error{Reason: fmt.Sprintf("parse %s: %v", expanded, err), Err: err}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return &Error{Field: keys[0], Reason: fmt.Sprintf("unknown key in %s (unknown: %s)", expanded, strings.Join(keys, ", "))}
	}

	merge(cfg, file, md)
	cfg.Path = expanded
	return nil
}

// merge copies the keys that were set in the file onto cfg.
func merge(cfg *Config, file Config, md toml.MetaData) {
	set := func(v *string, key, val string) {
		if md.IsDefined(key) {
			*v = val
		}
	}
	set(&cfg.Organisation, "organisation", file.Organisation)
	set(&cfg.Project, "project", file.Project)
	set(&cfg.Team, "team", file.Team)
	set(&cfg.Token, "token", file.Token)
	set(&cfg.BaseURL, "base_url", file.BaseURL)
	set(&cfg.Auth, "auth", file.Auth)
	set(&cfg.Timeout, "timeout", file.Timeout)

	if md.IsDefined("concurrency") {
		cfg.Concurrency = file.Concurrency
	}
	if md.IsDefined("max_depth") {
		cfg.MaxDepth = file.MaxDepth
	}
	if md.IsDefined("states") {
		cfg.States = file.States
	}
	if md.IsDefined("done_states") {
		cfg.DoneStates = file.DoneStates
	}
	if md.IsDefined("theme") {
		cfg.Theme = file.Theme
	}
}

func applyEnv(cfg *Config, getenv func(string) string) {
	for env, field := range map[string]*string{
		EnvOrganisation: &cfg.Organisation,
		EnvProject:      &cfg.Project,
		EnvTeam:         &cfg.Team,
		EnvToken:        &cfg.Token,
		EnvBaseURL:      &cfg.BaseURL,
	} {
		if v := strings.TrimSpace(getenv(env)); v != "" {
			*field = v
		}
	}
}

// expandPath expands ~ to the user's home directory
func expandPath(path string) (string, error) {
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand ~: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	if path == "~" {
		return os.UserHomeDir()
	}
	return path, nil
}
