// Package mcp provides an MCP (Model Context Protocol) server adapter for
// vibereader. It enables AI assistants like Claude to browse the library,
// read book text, and inspect reading progress.
package mcp

import "errors"

var (
	// ErrMissingLibraryService is returned when the library service is not provided.
	ErrMissingLibraryService = errors.New("mcp: library service is required")

	// ErrMissingProgressService is returned when the progress service is not provided.
	ErrMissingProgressService = errors.New("mcp: progress service is required")
)
