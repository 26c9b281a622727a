package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/clipvault/internal/core/domain"
)

// StoreService is the façade every external surface drives. It owns
// the query routing (empty, short, trigram), classifies writes, and
// keeps store and index in sync.
type StoreService interface {
	// SaveText classifies and stores text, returning the new item id
	// or 0 when the content is already present. A duplicate save
	// refreshes the existing item's timestamp.
	SaveText(ctx context.Context, text, sourceApp, sourceBundleID string) (int64, error)

	// SaveImage stores an image payload with its searchable description.
	SaveImage(ctx context.Context, req SaveImageRequest) (int64, error)

	// SaveFiles stores a set of files as one item. Dedup is
	// order-independent across the file set.
	SaveFiles(ctx context.Context, req SaveFilesRequest) (int64, error)

	// Search answers one query. Every call recomputes from scratch;
	// superseded queries are simply discarded by the caller.
	Search(ctx context.Context, query string, opts domain.SearchOptions) (domain.SearchResponse, error)

	// FetchPage returns a keyset page of items older than before.
	FetchPage(ctx context.Context, before *time.Time, limit int) (domain.Page, error)

	// FetchByIDs returns full items preserving input order.
	FetchByIDs(ctx context.Context, ids []int64) ([]domain.Item, error)

	// Get returns one item with its full payload.
	Get(ctx context.Context, id int64) (*domain.Item, error)

	// CopyToClipboard writes an item's payload to the clipboard and
	// moves it to the top of the history.
	CopyToClipboard(ctx context.Context, id int64) error

	// Touch refreshes an item's timestamp, moving it to the top.
	Touch(ctx context.Context, id int64) error

	// SetLinkMetadata records the outcome of a link metadata fetch
	// and makes a loaded title searchable.
	SetLinkMetadata(ctx context.Context, id int64, meta domain.LinkMetadata) error

	// SetImageDescription replaces an image item's searchable
	// description and re-indexes it.
	SetImageDescription(ctx context.Context, id int64, description string) error

	// SetFileStatus records whether a file item's attachment still
	// resolves at its captured path, or where it moved.
	SetFileStatus(ctx context.Context, id int64, path string, status domain.FileStatus) error

	// Delete removes an item from store and index.
	Delete(ctx context.Context, id int64) error

	// Clear removes every item from store and index.
	Clear(ctx context.Context) error

	// Prune shrinks the store below targetBytes by deleting the
	// oldest items, mirroring the deletes into the index. Returns
	// the number of items removed.
	Prune(ctx context.Context, targetBytes int64) (int, error)

	// RebuildIndex drops the index and re-inserts every store row.
	// Returns the number of documents indexed.
	RebuildIndex(ctx context.Context) (int, error)

	// EnsureIndex rebuilds the index when it is missing or stale
	// relative to the store, and is a no-op when it is consistent.
	// Returns the number of documents indexed.
	EnsureIndex(ctx context.Context) (int, error)

	// Stats summarizes store and index state.
	Stats(ctx context.Context) (StoreStats, error)

	// Close flushes and releases store and index.
	Close() error
}

// SaveImageRequest carries an image save.
type SaveImageRequest struct {
	// Data is the original image bytes, hashed for dedup.
	Data []byte

	// Thumbnail is an optional downscaled preview.
	Thumbnail []byte

	// Description is the searchable stand-in for the pixels.
	Description string

	// SourceApp is the application the image was copied from.
	SourceApp string

	// SourceBundleID is the source application's bundle identifier.
	SourceBundleID string
}

// SaveFilesRequest carries a file-set save.
type SaveFilesRequest struct {
	// Files are the constituent files in capture order.
	Files []domain.FileAttachment

	// Thumbnail is an optional preview of the primary file.
	Thumbnail []byte

	// SourceApp is the application the files were copied from.
	SourceApp string

	// SourceBundleID is the source application's bundle identifier.
	SourceBundleID string
}

// StoreStats summarizes store and index state for display.
type StoreStats struct {
	// Items is the number of live items.
	Items int64

	// ByKind breaks Items down by content kind.
	ByKind map[domain.ContentKind]int64

	// IndexedDocuments is the trigram index document count. Differs
	// from Items only when the index is stale.
	IndexedDocuments uint64

	// StoreBytes is the store's on-disk size.
	StoreBytes int64

	// IndexBytes is the trigram index's storage footprint.
	IndexBytes int64

	// Oldest is the capture time of the oldest item, zero when empty.
	Oldest time.Time
}
