package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested item does not exist.
	// Fetch and delete operations treat a missing id as an empty
	// result rather than a failure; this sentinel is for callers
	// that need to distinguish the two.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStoreClosed indicates the store has been shut down.
	ErrStoreClosed = errors.New("store closed")

	// Index Errors.

	// ErrIndexUnavailable indicates the trigram index cannot serve queries.
	// Search degrades to the substring scan path until a rebuild completes.
	ErrIndexUnavailable = errors.New("search index unavailable")

	// ErrIndexStale indicates the index and store disagree on item count.
	// Recoverable by rebuilding the index from store rows.
	ErrIndexStale = errors.New("search index stale")

	// ErrInterrupted indicates a long-running prune or rebuild was cancelled.
	// Store and index each remain individually valid afterwards.
	ErrInterrupted = errors.New("operation interrupted")
)
