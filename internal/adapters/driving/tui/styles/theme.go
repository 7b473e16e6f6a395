// Package styles provides colour themes and styling for the TUI.
// Three themes mirror the persisted reader preference: dark, light,
// and sepia.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colour palette and styling for the TUI.
type Theme struct {
	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Secondary is the secondary accent colour.
	Secondary lipgloss.Color

	// Background is the background colour.
	Background lipgloss.Color

	// Surface is the background for bars and panels.
	Surface lipgloss.Color

	// Foreground is the default text colour.
	Foreground lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// Success indicates positive outcomes.
	Success lipgloss.Color

	// Warning indicates caution.
	Warning lipgloss.Color

	// Error indicates problems.
	Error lipgloss.Color

	// Border is the border colour.
	Border lipgloss.Color
}

// DarkTheme returns the dark reading theme.
func DarkTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#7C3AED"), // Purple
		Secondary:  lipgloss.Color("#06B6D4"), // Cyan
		Background: lipgloss.Color("#1E1E2E"), // Dark gray
		Surface:    lipgloss.Color("#181825"), // Darker gray
		Foreground: lipgloss.Color("#CDD6F4"), // Light gray
		Muted:      lipgloss.Color("#6C7086"), // Medium gray
		Success:    lipgloss.Color("#A6E3A1"), // Green
		Warning:    lipgloss.Color("#F9E2AF"), // Yellow
		Error:      lipgloss.Color("#F38BA8"), // Red
		Border:     lipgloss.Color("#45475A"), // Border gray
	}
}

// LightTheme returns the light reading theme.
func LightTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#6D28D9"), // Purple
		Secondary:  lipgloss.Color("#0891B2"), // Cyan
		Background: lipgloss.Color("#FAFAFA"), // Near white
		Surface:    lipgloss.Color("#E5E7EB"), // Light gray
		Foreground: lipgloss.Color("#1F2937"), // Near black
		Muted:      lipgloss.Color("#9CA3AF"), // Medium gray
		Success:    lipgloss.Color("#16A34A"), // Green
		Warning:    lipgloss.Color("#D97706"), // Amber
		Error:      lipgloss.Color("#DC2626"), // Red
		Border:     lipgloss.Color("#D1D5DB"), // Border gray
	}
}

// SepiaTheme returns the warm, paper-like reading theme.
func SepiaTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#A0522D"), // Sienna
		Secondary:  lipgloss.Color("#8B6914"), // Dark gold
		Background: lipgloss.Color("#F4ECD8"), // Aged paper
		Surface:    lipgloss.Color("#E9DFC6"), // Darker paper
		Foreground: lipgloss.Color("#5B4636"), // Warm brown
		Muted:      lipgloss.Color("#A89578"), // Faded brown
		Success:    lipgloss.Color("#6B8E23"), // Olive
		Warning:    lipgloss.Color("#B8860B"), // Goldenrod
		Error:      lipgloss.Color("#B03A2E"), // Brick red
		Border:     lipgloss.Color("#D8C9A3"), // Paper border
	}
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return DarkTheme()
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	// Title style for headers.
	Title lipgloss.Style

	// Subtitle style for secondary headers.
	Subtitle lipgloss.Style

	// Normal style for regular text.
	Normal lipgloss.Style

	// Muted style for less important text.
	Muted lipgloss.Style

	// Error style for error messages.
	Error lipgloss.Style

	// Success style for success messages.
	Success lipgloss.Style

	// Warning style for warning messages.
	Warning lipgloss.Style

	// StatusBar style for the status bar.
	StatusBar lipgloss.Style

	// Help style for help text.
	Help lipgloss.Style

	// Border style for bordered containers.
	Border lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Subtitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		Normal: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error),

		Success: lipgloss.NewStyle().
			Foreground(theme.Success),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(theme.Surface).
			Padding(0, 1),

		Help: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}
