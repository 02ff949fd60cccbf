package styles

import (
	"image/color"
	"os"

	"charm.land/lipgloss/v2"

	"github.com/raphi011/abt/internal/config"
)

// Theme defines the color palette for UI components
type Theme struct {
	Primary color.Color // borders, titles
	Accent  color.Color // selected items
	Success color.Color
	Error   color.Color
	Muted   color.Color // inactive panes, hints
	Normal  color.Color
	Info    color.Color
	Warning color.Color
}

// palette lists a theme's colors in Theme field order.
type palette [8]string

func (p palette) theme() *Theme {
	c := func(s string) color.Color { return lipgloss.Color(s) }
	return &Theme{
		Primary: c(p[0]), Accent: c(p[1]), Success: c(p[2]), Error: c(p[3]),
		Muted: c(p[4]), Normal: c(p[5]), Info: c(p[6]), Warning: c(p[7]),
	}
}

// family groups the light and dark variants of a preset.
type family struct {
	light, dark *Theme
}

var noneTheme = &Theme{
	Primary: lipgloss.NoColor{}, Accent: lipgloss.NoColor{}, Success: lipgloss.NoColor{}, Error: lipgloss.NoColor{},
	Muted: lipgloss.NoColor{}, Normal: lipgloss.NoColor{}, Info: lipgloss.NoColor{}, Warning: lipgloss.NoColor{},
}

// DefaultTheme is used when no preset is configured.
var DefaultTheme = *palette{"62", "212", "82", "196", "240", "252", "244", "214"}.theme()

var families = map[string]family{
	"none":    {light: noneTheme, dark: noneTheme},
	"default": {dark: &DefaultTheme},
	"dracula": {dark: palette{"#bd93f9", "#ff79c6", "#50fa7b", "#ff5555", "#6272a4", "#f8f8f2", "#8be9fd", "#ffb86c"}.theme()},
	"nord": {
		light: palette{"#5e81ac", "#b48ead", "#a3be8c", "#bf616a", "#9a9a9a", "#2e3440", "#81a1c1", "#d08770"}.theme(),
		dark:  palette{"#88c0d0", "#b48ead", "#a3be8c", "#bf616a", "#4c566a", "#eceff4", "#81a1c1", "#ebcb8b"}.theme(),
	},
	"gruvbox": {
		light: palette{"#076678", "#8f3f71", "#79740e", "#9d0006", "#928374", "#3c3836", "#427b58", "#b57614"}.theme(),
		dark:  palette{"#83a598", "#d3869b", "#b8bb26", "#fb4934", "#665c54", "#ebdbb2", "#8ec07c", "#fabd2f"}.theme(),
	},
	"catppuccin": {
		light: palette{"#1e66f5", "#ea76cb", "#40a02b", "#d20f39", "#9ca0b0", "#4c4f69", "#179299", "#fe640b"}.theme(),
		dark:  palette{"#89b4fa", "#f5c2e7", "#a6e3a1", "#f38ba8", "#6c7086", "#cdd6f4", "#94e2d5", "#fab387"}.theme(),
	},
}

var currentTheme = DefaultTheme

// Current returns the active theme.
func Current() Theme {
	return currentTheme
}

// Init selects the theme from config and rebuilds the shared styles.
// Call it after loading config and before rendering anything.
// Unknown names and modes were already rejected by config validation.
func Init(cfg config.ThemeConfig) {
	theme := selectTheme(cfg, func() bool { return lipgloss.HasDarkBackground(os.Stdin, os.Stderr) })

	for _, o := range []struct {
		value string
		dst   *color.Color
	}{
		{cfg.Primary, &theme.Primary},
		{cfg.Accent, &theme.Accent},
		{cfg.Success, &theme.Success},
		{cfg.Error, &theme.Error},
		{cfg.Muted, &theme.Muted},
		{cfg.Normal, &theme.Normal},
		{cfg.Info, &theme.Info},
		{cfg.Warning, &theme.Warning},
	} {
		if o.value != "" {
			*o.dst = lipgloss.Color(o.value)
		}
	}

	currentTheme = theme
	applyTheme(theme)
}

// selectTheme picks the family variant for the configured mode. isDark is
// only called in auto mode.
func selectTheme(cfg config.ThemeConfig, isDark func() bool) Theme {
	fam, ok := families[cfg.Name]
	if !ok {
		fam = families["default"]
	}

	var t *Theme
	switch cfg.Mode {
	case "light":
		t = fam.light
	case "dark":
		t = fam.dark
	default:
		if isDark() {
			t = fam.dark
		} else {
			t = fam.light
		}
	}

	// Fall back to whichever variant exists.
	if t == nil {
		t = fam.dark
	}
	if t == nil {
		t = fam.light
	}
	return *t
}

func applyTheme(t Theme) {
	Primary, Accent, Success, Error = t.Primary, t.Accent, t.Success, t.Error
	Muted, Normal, Info, Warning = t.Muted, t.Normal, t.Info, t.Warning

	PrimaryStyle = lipgloss.NewStyle().Foreground(t.Primary)
	AccentStyle = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(t.Success)
	ErrorStyle = lipgloss.NewStyle().Foreground(t.Error)
	MutedStyle = lipgloss.NewStyle().Foreground(t.Muted)
	NormalStyle = lipgloss.NewStyle().Foreground(t.Normal)
	InfoStyle = lipgloss.NewStyle().Foreground(t.Info).Italic(true)
	WarningStyle = lipgloss.NewStyle().Foreground(t.Warning)
	HighlightStyle = lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Underline(true)

	PaneStyle = PaneStyle.BorderForeground(t.Muted)
	ActivePaneStyle = ActivePaneStyle.BorderForeground(t.Primary)
}

// PresetNames returns the available preset families.
func PresetNames() []string {
	return config.ValidThemeNames
}
