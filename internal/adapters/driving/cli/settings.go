package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure reader display, position tracking, and progress
backend options.

Use subcommands to change specific settings.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsThemeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Set the reader theme",
	Long: `Set the reader colour scheme.

Available themes:
  light - Dark text on a light background
  dark  - Light text on a dark background
  sepia - Warm, paper-like tones`,
	RunE: runSettingsTheme,
}

var settingsPageModeCmd = &cobra.Command{
	Use:   "page-mode",
	Short: "Set the page navigation style",
	Long: `Set how the reader advances through content.

Available modes:
  paginated - Turn discrete pages
  scroll    - Scroll continuously by line`,
	RunE: runSettingsPageMode,
}

var settingsFontCmd = &cobra.Command{
	Use:   "font",
	Short: "Set font preferences",
	Long: `Set the persisted font preferences.

The terminal reader uses the terminal's own font; these preferences are
stored for graphical clients sharing the library.`,
	RunE: runSettingsFont,
}

var settingsTrackingCmd = &cobra.Command{
	Use:   "tracking",
	Short: "Configure position tracking",
	Long: `Configure how reading positions are tracked.

The debounce window is how long the view must hold still before a
position is saved. The chunk size is the character count per
locations-index chunk; completion percentages are derived from it.`,
	RunE: runSettingsTracking,
}

var settingsBackendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Configure the progress backend",
	Long: `Configure where reading progress is persisted.

Available backends:
  local  - On-device database (default, no setup required)
  remote - HTTP sync API shared across devices`,
	RunE: runSettingsBackend,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsThemeCmd)
	settingsCmd.AddCommand(settingsPageModeCmd)
	settingsCmd.AddCommand(settingsFontCmd)
	settingsCmd.AddCommand(settingsTrackingCmd)
	settingsCmd.AddCommand(settingsBackendCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	// Reader settings
	cmd.Println("[Reader]")
	cmd.Printf("  Theme:     %s\n", settings.Reader.Theme.Description())
	cmd.Printf("  Page mode: %s\n", settings.Reader.PageMode.Description())
	cmd.Printf("  Font:      %s %dpt, line height %.1f\n",
		settings.Reader.FontFamily, settings.Reader.FontSize, settings.Reader.LineHeight)
	cmd.Println()

	// Tracking settings
	cmd.Println("[Tracking]")
	cmd.Printf("  Debounce:   %d ms\n", settings.Tracking.DebounceMillis)
	cmd.Printf("  Chunk size: %d characters\n", settings.Tracking.ChunkSize)
	cmd.Println()

	// Backend settings
	cmd.Println("[Backend]")
	cmd.Printf("  Mode: %s\n", settings.Backend.Mode.Description())
	if settings.Backend.Mode == domain.BackendModeRemote {
		cmd.Printf("  Base URL: %s\n", settings.Backend.BaseURL)
		if settings.Backend.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Backend.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !settings.Backend.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	// Validation
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'vibereader settings backend' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsTheme(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Println("Select Theme")
	cmd.Println("------------")
	themes := domain.AllThemes()
	for i, theme := range themes {
		cmd.Printf("  %d. %s\n", i+1, theme.Description())
	}
	cmd.Print("\nEnter choice: ")
	input := readLine(reader)
	idx := parseChoice(input, len(themes), 0)
	if idx == 0 {
		return errors.New("invalid selection")
	}

	selected := themes[idx-1]
	if err := settingsService.SetTheme(selected); err != nil {
		return fmt.Errorf("failed to set theme: %w", err)
	}

	cmd.Printf("Theme set to: %s\n", selected.Description())
	return nil
}

func runSettingsPageMode(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Println("Select Page Mode")
	cmd.Println("----------------")
	modes := domain.AllPageModes()
	for i, mode := range modes {
		cmd.Printf("  %d. %s\n", i+1, mode.Description())
	}
	cmd.Print("\nEnter choice: ")
	input := readLine(reader)
	idx := parseChoice(input, len(modes), 0)
	if idx == 0 {
		return errors.New("invalid selection")
	}

	selected := modes[idx-1]
	if err := settingsService.SetPageMode(selected); err != nil {
		return fmt.Errorf("failed to set page mode: %w", err)
	}

	cmd.Printf("Page mode set to: %s\n", selected.Description())
	return nil
}

func runSettingsFont(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Printf("Enter font size [%d]: ", settings.Reader.FontSize)
	size := parsePositiveInt(readLine(reader), settings.Reader.FontSize)

	cmd.Printf("Enter font family [%s]: ", settings.Reader.FontFamily)
	family := readLine(reader)
	if family == "" {
		family = settings.Reader.FontFamily
	}

	cmd.Printf("Enter line height [%.1f]: ", settings.Reader.LineHeight)
	lineHeight := parsePositiveFloat(readLine(reader), settings.Reader.LineHeight)

	if err := settingsService.SetFont(size, family, lineHeight); err != nil {
		return fmt.Errorf("failed to set font: %w", err)
	}

	cmd.Printf("Font set to: %s %dpt, line height %.1f\n", family, size, lineHeight)
	return nil
}

func runSettingsTracking(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Printf("Enter debounce window in milliseconds [%d]: ", settings.Tracking.DebounceMillis)
	debounce := parsePositiveInt(readLine(reader), settings.Tracking.DebounceMillis)

	cmd.Printf("Enter locations chunk size in characters [%d]: ", settings.Tracking.ChunkSize)
	chunkSize := parsePositiveInt(readLine(reader), settings.Tracking.ChunkSize)

	if err := settingsService.SetTracking(debounce, chunkSize); err != nil {
		return fmt.Errorf("failed to set tracking options: %w", err)
	}

	cmd.Printf("Tracking set to: %d ms debounce, %d character chunks\n", debounce, chunkSize)
	cmd.Println("Note: a changed chunk size applies to indexes built from now on.")
	return nil
}

func runSettingsBackend(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Println("Select Progress Backend")
	cmd.Println("-----------------------")
	modes := domain.AllBackendModes()
	for i, mode := range modes {
		cmd.Printf("  %d. %s\n", i+1, mode.Description())
	}
	cmd.Print("\nEnter choice: ")
	input := readLine(reader)
	idx := parseChoice(input, len(modes), 0)
	if idx == 0 {
		return errors.New("invalid selection")
	}

	selected := modes[idx-1]
	if selected == domain.BackendModeLocal {
		if err := settingsService.SetBackend(selected, "", ""); err != nil {
			return fmt.Errorf("failed to set backend: %w", err)
		}
		cmd.Printf("Backend set to: %s\n", selected.Description())
		return nil
	}

	// Remote mode needs an endpoint and credentials.
	cmd.Printf("Enter sync API base URL [%s]: ", settings.Backend.BaseURL)
	baseURL := readLine(reader)
	if baseURL == "" {
		baseURL = settings.Backend.BaseURL
	}
	if baseURL == "" {
		return errors.New("base URL is required for the remote backend")
	}

	cmd.Print("Enter API key (empty to keep current): ")
	apiKey := readPassword()
	cmd.Println()
	if apiKey == "" {
		apiKey = settings.Backend.APIKey
	}

	if err := settingsService.SetBackend(selected, baseURL, apiKey); err != nil {
		return fmt.Errorf("failed to set backend: %w", err)
	}

	cmd.Printf("Backend set to: %s (%s)\n", selected.Description(), baseURL)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

func parsePositiveInt(input string, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 {
		return defaultVal
	}
	return val
}

func parsePositiveFloat(input string, defaultVal float64) float64 {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.ParseFloat(input, 64)
	if err != nil || val <= 0 {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
