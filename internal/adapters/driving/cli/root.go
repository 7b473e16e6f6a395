// Package cli provides the command-line interface for vibereader.
// It is a driving adapter: commands depend only on the driving ports
// and are wired to concrete services at startup via SetServices.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/ports/driving"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// verbose enables debug logging across all commands.
var verbose bool

// Package-level services injected via SetServices before Execute.
var (
	libraryService  driving.LibraryService
	readerService   driving.ReaderService
	progressService driving.ProgressService
	settingsService driving.SettingsService
)

// Services aggregates the driving services the commands depend on.
type Services struct {
	Library  driving.LibraryService
	Reader   driving.ReaderService
	Progress driving.ProgressService
	Settings driving.SettingsService
}

// SetServices wires concrete services into the command tree.
func SetServices(s Services) {
	libraryService = s.Library
	readerService = s.Reader
	progressService = s.Progress
	settingsService = s.Settings
}

var rootCmd = &cobra.Command{
	Use:   "vibereader",
	Short: "A terminal EPUB reader that never loses your place",
	Long: `vibereader is a terminal EPUB reader with persistent reading positions.

Import books into a local library, read them in a full-screen terminal
interface, and pick up exactly where you left off. Reading progress is
tracked automatically and can be kept on-device or synced to a remote
backend.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
