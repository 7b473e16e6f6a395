package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"
)

var importCmd = &cobra.Command{
	Use:   "import [file.epub]",
	Short: "Add an EPUB to the library",
	Long: `Imports an EPUB file into the library.

The file is copied into the library directory and its metadata and
cover are extracted. A book that is already in the library (same file
contents) is rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List books in the library",
	RunE:  runList,
}

var infoCmd = &cobra.Command{
	Use:   "info [book]",
	Short: "Show book details",
	Long:  `Shows details for a book, referenced by ID, ID prefix, or title.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [book]",
	Short: "Remove a book from the library",
	Long: `Removes a book from the library, referenced by ID, ID prefix, or title.

The stored file, cover, reading progress, and cached locations index
are all removed.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	ctx := context.Background()

	book, err := libraryService.Import(ctx, args[0])
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return fmt.Errorf("book is already in the library: %w", err)
		}
		return fmt.Errorf("failed to import book: %w", err)
	}

	cmd.Printf("Imported: %s\n", book.Title)
	cmd.Printf("  Author: %s\n", book.DisplayAuthor())
	cmd.Printf("  ID:     %s\n", book.ID)
	return nil
}

func runList(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	ctx := context.Background()

	books, err := libraryService.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list books: %w", err)
	}

	if len(books) == 0 {
		cmd.Println("No books in the library. Add one with 'vibereader import'.")
		return nil
	}

	cmd.Println("Library:")
	cmd.Println()
	for i := range books {
		cmd.Printf("  %s\n", books[i].ID)
		cmd.Printf("    Title:  %s\n", books[i].Title)
		cmd.Printf("    Author: %s\n", books[i].DisplayAuthor())
		cmd.Println()
	}

	cmd.Printf("Total: %d books\n", len(books))
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	ctx := context.Background()

	book, err := libraryService.Find(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to find book: %w", err)
	}

	cmd.Printf("Book: %s\n\n", book.ID)
	cmd.Printf("  Title:     %s\n", book.Title)
	cmd.Printf("  Author:    %s\n", book.DisplayAuthor())
	if book.Publisher != "" {
		cmd.Printf("  Publisher: %s\n", book.Publisher)
	}
	if book.Language != "" {
		cmd.Printf("  Language:  %s\n", book.Language)
	}
	if book.ISBN != "" {
		cmd.Printf("  ISBN:      %s\n", book.ISBN)
	}
	cmd.Printf("  File:      %s (%s)\n", book.FilePath, formatFileSize(book.FileSize))
	cmd.Printf("  Hash:      %s\n", book.FileHash)
	cmd.Printf("  Imported:  %s\n", book.ImportedAt.Format("2006-01-02 15:04:05"))

	if book.Description != "" {
		cmd.Printf("\n  %s\n", book.Description)
	}

	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	ctx := context.Background()

	book, err := libraryService.Find(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to find book: %w", err)
	}

	if err := libraryService.Delete(ctx, book.ID); err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}

	cmd.Printf("Deleted: %s\n", book.Title)
	return nil
}

// formatFileSize renders a byte count in a human-readable unit.
func formatFileSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}
