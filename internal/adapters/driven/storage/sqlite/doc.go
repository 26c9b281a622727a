// Package sqlite implements the item store on SQLite.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. Items live in a single
// table tagged by content kind; file attachments live in item_files with
// cascade deletes. The index_text column carries each item's precomputed
// search projection so scan paths and index rebuilds never reassemble it
// from variant columns.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.clipvault/data/history.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
