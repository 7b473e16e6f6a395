// Package tui provides the interactive reading interface for vibereader.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Reader opens tracking sessions with position recovery.
	Reader driving.ReaderService

	// Settings supplies the persisted theme and page mode.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(reader driving.ReaderService, settings driving.SettingsService) *Ports {
	return &Ports{
		Reader:   reader,
		Settings: settings,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Reader == nil {
		return ErrMissingReaderService
	}
	if p.Settings == nil {
		return ErrMissingSettingsService
	}
	return nil
}
