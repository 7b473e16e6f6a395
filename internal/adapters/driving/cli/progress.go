package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/adapters/driven/engine/textpage"
)

var progressCmd = &cobra.Command{
	Use:   "progress [book]",
	Short: "Show stored reading progress",
	Long: `Shows the saved reading position for a book, referenced by ID, ID
prefix, or title.`,
	Args: cobra.ExactArgs(1),
	RunE: runProgress,
}

var progressClearCmd = &cobra.Command{
	Use:   "clear [book]",
	Short: "Clear stored reading progress",
	Long: `Removes the saved reading position and cached locations index for a
book. The book itself stays in the library; the next read starts from
the beginning.`,
	Args: cobra.ExactArgs(1),
	RunE: runProgressClear,
}

// locationsBuild forces a synchronous rebuild of the locations index.
var locationsBuild bool

var locationsCmd = &cobra.Command{
	Use:   "locations [book]",
	Short: "Inspect the locations index",
	Long: `Shows the cached locations index for a book. The index maps fixed-size
character chunks to positions and is what completion percentages are
derived from.

Use --build to rebuild the index synchronously. The saved reading
position is not moved.`,
	Args: cobra.ExactArgs(1),
	RunE: runLocations,
}

func init() {
	locationsCmd.Flags().BoolVar(&locationsBuild, "build", false, "rebuild the index before showing it")

	progressCmd.AddCommand(progressClearCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(locationsCmd)
}

func runProgress(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}
	if progressService == nil {
		return errors.New("progress service not configured")
	}

	ctx := context.Background()

	book, err := libraryService.Find(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to find book: %w", err)
	}

	record, err := progressService.Progress(ctx, book.ID)
	if err != nil {
		return fmt.Errorf("failed to read progress: %w", err)
	}

	cmd.Printf("Progress: %s\n\n", book.Title)

	if !record.HasPosition() {
		cmd.Println("  Not started yet.")
		return nil
	}

	cmd.Printf("  Position:  %s\n", record.PositionID)
	if record.Chapter != nil {
		cmd.Printf("  Chapter:   %d\n", *record.Chapter+1)
	}
	if record.Fraction != nil {
		cmd.Printf("  Complete:  %d%%\n", int(*record.Fraction*100+0.5))
	} else {
		cmd.Printf("  Complete:  unavailable (no locations index)\n")
	}
	if !record.LastReadAt.IsZero() {
		cmd.Printf("  Last read: %s\n", record.LastReadAt.Format("2006-01-02 15:04:05"))
	}

	return nil
}

func runProgressClear(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}
	if progressService == nil {
		return errors.New("progress service not configured")
	}

	ctx := context.Background()

	book, err := libraryService.Find(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to find book: %w", err)
	}

	if err := progressService.ClearProgress(ctx, book.ID); err != nil {
		return fmt.Errorf("failed to clear progress: %w", err)
	}

	cmd.Printf("Progress cleared for %s.\n", book.Title)
	return nil
}

func runLocations(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}
	if progressService == nil {
		return errors.New("progress service not configured")
	}

	ctx := context.Background()

	book, err := libraryService.Find(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to find book: %w", err)
	}

	if locationsBuild {
		return rebuildLocations(ctx, cmd, book.ID, book.Title)
	}

	record, err := progressService.Progress(ctx, book.ID)
	if err != nil {
		return fmt.Errorf("failed to read progress: %w", err)
	}

	cmd.Printf("Locations: %s\n\n", book.Title)

	if record.Locations.IsEmpty() {
		cmd.Println("  No locations index cached.")
		cmd.Println("  One is built in the background on first read, or run with --build.")
		return nil
	}

	cmd.Printf("  Chunks:       %d\n", record.Locations.Len())
	cmd.Printf("  Chunk size:   %d characters\n", record.Locations.ChunkSize)
	cmd.Printf("  Content hash: %s\n", record.Locations.ContentHash)
	cmd.Printf("  Built:        %s\n", record.Locations.BuiltAt.Format("2006-01-02 15:04:05"))
	return nil
}

func rebuildLocations(ctx context.Context, cmd *cobra.Command, bookID, title string) error {
	content, err := libraryService.Content(ctx, bookID)
	if err != nil {
		return fmt.Errorf("failed to open book: %w", err)
	}

	engine, err := textpage.NewEngine(content)
	if err != nil {
		return fmt.Errorf("failed to prepare book: %w", err)
	}
	defer engine.Close() //nolint:errcheck // Intentionally ignore errors during cleanup

	cmd.Printf("Building locations index for %s...\n", title)

	index, err := progressService.RebuildLocations(ctx, bookID, engine)
	if err != nil {
		return fmt.Errorf("failed to build locations index: %w", err)
	}

	cmd.Printf("Built %d chunks of %d characters (content %s).\n",
		index.Len(), index.ChunkSize, index.ContentHash)
	return nil
}
