package driven

import (
	"context"

	"github.com/custodia-labs/clipvault/internal/core/domain"
)

// TrigramIndex is the persistent inverted index over item text.
// Backed by Bleve with a 3-character shingle analyzer. The index is
// a derived artifact: it can always be rebuilt from store rows, and
// callers fall back to store scans when it is unavailable.
type TrigramIndex interface {
	// Insert adds or replaces the document for an item.
	Insert(ctx context.Context, doc domain.IndexedDocument) error

	// InsertBatch adds or replaces many documents in one commit.
	InsertBatch(ctx context.Context, docs []domain.IndexedDocument) error

	// Delete removes an item's document. Missing ids are a no-op.
	Delete(ctx context.Context, id int64) error

	// DeleteBatch removes many documents in one commit.
	DeleteBatch(ctx context.Context, ids []int64) error

	// Recall tokenizes the query into trigrams and returns up to
	// limit candidates ordered by relevance blended with recency. Each
	// candidate carries denormalized content and timestamp so the
	// scoring phases never round-trip to the store. Queries shorter
	// than three characters cannot shingle and must use the store's
	// scan paths instead.
	Recall(ctx context.Context, query string, limit int) ([]domain.SearchCandidate, error)

	// Count returns the number of indexed documents.
	Count(ctx context.Context) (uint64, error)

	// SizeBytes reports the index's storage footprint.
	SizeBytes(ctx context.Context) (int64, error)

	// Clear drops every document.
	Clear(ctx context.Context) error

	// Close releases index resources.
	Close() error
}
