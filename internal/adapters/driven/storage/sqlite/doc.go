// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - BookStore: Library catalogue persistence
//   - ProgressBackend: Reading progress and locations cache persistence
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Write Ordering
//
// Progress writes carry a staged timestamp and are applied through a
// conditional upsert: an update staged at or before the stored row's
// timestamp changes nothing and reports domain.ErrStaleWrite. Out of
// order write completion can therefore never move a reading position
// backwards.
//
// # Data Location
//
// By default, the database is stored at ~/.vibereader/data/library.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
