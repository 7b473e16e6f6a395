package mcp

import (
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Library provides access to the book catalogue and chapter text.
	Library driving.LibraryService

	// Progress inspects stored reading progress.
	Progress driving.ProgressService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Library == nil {
		return ErrMissingLibraryService
	}
	if p.Progress == nil {
		return ErrMissingProgressService
	}
	return nil
}
