package tui

import "errors"

// ErrMissingReaderService is returned when the reader service is not provided.
var ErrMissingReaderService = errors.New("tui: reader service is required")

// ErrMissingSettingsService is returned when the settings service is not provided.
var ErrMissingSettingsService = errors.New("tui: settings service is required")

// ErrMissingBook is returned when no book is given to the app.
var ErrMissingBook = errors.New("tui: book is required")

// ErrMissingEngine is returned when no rendering engine is given to the app.
var ErrMissingEngine = errors.New("tui: rendering engine is required")
