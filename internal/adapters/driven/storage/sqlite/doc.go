// Package sqlite persists the knowledge base snapshot in SQLite.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.voxdesk/data/knowledge.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. A snapshot is written in one
// transaction, so readers see either the previous snapshot or the new one.
package sqlite
