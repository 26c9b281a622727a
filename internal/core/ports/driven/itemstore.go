package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/clipvault/internal/core/domain"
)

// ItemStore persists clipboard items and their typed payloads.
// Backed by SQLite. Every mutation here is mirrored into the
// TrigramIndex by the orchestrator within the same logical write.
type ItemStore interface {
	// Save inserts the item and returns its new id. If an item with
	// the same content hash already exists, the existing item's
	// timestamp is refreshed instead and its id is returned with
	// duplicate set. Duplicates are a defined outcome, not an error.
	Save(ctx context.Context, item *domain.Item) (id int64, duplicate bool, err error)

	// GetByID retrieves one item with its full payload, binary
	// columns included. Returns domain.ErrNotFound for missing ids.
	GetByID(ctx context.Context, id int64) (*domain.Item, error)

	// GetByIDs retrieves items preserving input order. Missing ids
	// are skipped, never an error.
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Item, error)

	// GetMetadataByIDs is the search-path hydrator: input order
	// preserved, missing ids skipped, binary payload columns never
	// selected. A non-empty kinds slice filters the result.
	GetMetadataByIDs(ctx context.Context, ids []int64, kinds []domain.ContentKind) ([]domain.Item, error)

	// GetPage returns items strictly older than before (all items
	// when nil), newest first, ties broken by id. Keyset pagination:
	// concurrent inserts never duplicate or skip a boundary.
	GetPage(ctx context.Context, before *time.Time, limit int) (domain.Page, error)

	// SearchPrefix returns candidates whose content starts with
	// prefix, case-insensitive, newest first. Index-assisted, so it
	// scans the whole store.
	SearchPrefix(ctx context.Context, prefix string, limit int) ([]domain.SearchCandidate, error)

	// SearchRecentSubstring returns candidates containing needle,
	// case-insensitive, restricted to the scanLimit most recent
	// items. Substring scans are unindexed and must stay bounded.
	SearchRecentSubstring(ctx context.Context, needle string, scanLimit, limit int) ([]domain.SearchCandidate, error)

	// Touch refreshes an item's timestamp, moving it to the top.
	Touch(ctx context.Context, id int64, ts time.Time) error

	// UpdateLinkMetadata transitions a link item's metadata state.
	UpdateLinkMetadata(ctx context.Context, id int64, meta domain.LinkMetadata) error

	// UpdateImageDescription replaces an image item's searchable
	// description text.
	UpdateImageDescription(ctx context.Context, id int64, description string) error

	// UpdateFileStatus records resolution results for one attachment.
	UpdateFileStatus(ctx context.Context, id int64, path string, status domain.FileStatus) error

	// Delete removes an item. Missing ids are a no-op.
	Delete(ctx context.Context, id int64) error

	// Clear removes every item.
	Clear(ctx context.Context) error

	// Prune deletes the oldest items until the projected size is at
	// most lowWater of targetBytes, then reclaims file space.
	// Returns the deleted ids so the caller can mirror the deletes
	// into the index. Checks ctx between batches; an interrupted
	// prune leaves a valid store.
	Prune(ctx context.Context, targetBytes int64, lowWater float64) (deleted []int64, err error)

	// IndexRows returns index projections for items with id greater
	// than afterID, ascending by id, up to limit. Drives rebuilds.
	IndexRows(ctx context.Context, afterID int64, limit int) ([]domain.IndexedDocument, error)

	// Count returns the number of live items.
	Count(ctx context.Context) (int64, error)

	// Oldest returns the capture time of the oldest live item,
	// zero when the store is empty.
	Oldest(ctx context.Context) (time.Time, error)

	// CountByKind returns live item counts grouped by content kind.
	CountByKind(ctx context.Context) (map[domain.ContentKind]int64, error)

	// SizeBytes reports the store's on-disk size.
	SizeBytes(ctx context.Context) (int64, error)

	// Close releases the underlying database.
	Close() error
}
