// Package domain defines the core business entities for VibeReader.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Book: An imported EPUB with metadata and file identity
//   - ProgressRecord: The persisted reading position for a book
//   - LocationsIndex: Stable chunk boundaries over document content
//   - Relocation: A settled-position event from the rendering engine
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
