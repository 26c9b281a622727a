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
//   - ItemStore: Durable item persistence with dedup (SQLite)
//   - TrigramIndex: Persistent inverted index for recall (Bleve)
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Clipboard: System clipboard access. Only the watcher and the
//     copy command need it; search and storage work without one.
//
// The TrigramIndex is required but expendable: when it errors, search
// degrades to the ItemStore scan paths and the orchestrator schedules
// a rebuild, because the index is derived entirely from store rows.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
