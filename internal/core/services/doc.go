// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The store service is the orchestrator: it owns the dual-write
// (store row + index entry), the two-phase search pipeline, and the
// fallback/rebuild policy when the index misbehaves. The watcher
// service polls the system clipboard and feeds captures into it.
package services
