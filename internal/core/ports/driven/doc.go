// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Renderer: The rendering engine. Owns content, display, and the
//     position identifier scheme; position ids are opaque outside it.
//   - ProgressBackend: Reading progress persistence (SQLite or remote
//     sync API). Enforces write ordering by staged timestamp.
//   - BookStore: Book catalogue persistence.
//   - BookArchive: Stored EPUB files and covers on disk.
//   - BookParser: EPUB container reading.
//   - ConfigStore: Application configuration.
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ImportWatcher: Drop-directory watching for automatic import.
//     Only the watch command requires one.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
