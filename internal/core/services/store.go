package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/clipvault/internal/core/domain"
	"github.com/custodia-labs/clipvault/internal/core/ports/driven"
	"github.com/custodia-labs/clipvault/internal/core/ports/driving"
	"github.com/custodia-labs/clipvault/internal/logger"
)

// Ensure StoreService implements the interface.
var _ driving.StoreService = (*StoreService)(nil)

// rebuildBatchSize is how many store rows a rebuild indexes per commit.
const rebuildBatchSize = 500

// StoreService is the orchestrator behind every external surface.
// It classifies writes, keeps the item store and the trigram index in
// sync through dual writes, and routes queries to the empty, short
// and trigram search paths.
//
// The store is the source of truth. When an index write fails the
// operation still succeeds with a warning, because the index is a
// derived artifact that EnsureIndex or RebuildIndex restores.
type StoreService struct {
	items  driven.ItemStore
	index  driven.TrigramIndex
	clip   driven.Clipboard
	tuning domain.Tuning

	// indexDirty is set when a recall fails and the search falls
	// back to store scans. EnsureIndex then rebuilds even if the
	// document counts happen to agree.
	indexDirty atomic.Bool
}

// NewStoreService creates the orchestrator. clip may be nil for
// headless use; CopyToClipboard then returns an error.
func NewStoreService(items driven.ItemStore, index driven.TrigramIndex, clip driven.Clipboard, tuning domain.Tuning) *StoreService {
	return &StoreService{
		items:  items,
		index:  index,
		clip:   clip,
		tuning: tuning.WithDefaults(),
	}
}

// SaveText classifies and stores a text capture. Returns the new
// item id, or 0 when the content hash already exists; a duplicate
// save refreshes the existing item's timestamp instead.
func (s *StoreService) SaveText(ctx context.Context, text, sourceApp, sourceBundleID string) (int64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, fmt.Errorf("%w: empty text", domain.ErrInvalidInput)
	}

	c := domain.Classify(text)
	item := &domain.Item{
		Kind:           c.Kind,
		Content:        c.Content,
		ContentHash:    domain.TextHash(c.Content),
		Timestamp:      time.Now(),
		SourceApp:      sourceApp,
		SourceBundleID: sourceBundleID,
		Color:          c.Color,
	}
	if c.Kind == domain.KindLink {
		item.Link = &domain.LinkMetadata{State: domain.LinkStatePending}
	}
	return s.saveItem(ctx, item)
}

// SaveImage stores an image capture. The description is the image's
// searchable stand-in; the pixels never reach the index.
func (s *StoreService) SaveImage(ctx context.Context, req driving.SaveImageRequest) (int64, error) {
	if len(req.Data) == 0 {
		return 0, fmt.Errorf("%w: empty image data", domain.ErrInvalidInput)
	}

	item := &domain.Item{
		Kind:           domain.KindImage,
		Content:        req.Description,
		ContentHash:    domain.ImageHash(req.Data),
		Timestamp:      time.Now(),
		SourceApp:      req.SourceApp,
		SourceBundleID: req.SourceBundleID,
		Image: &domain.ImageContent{
			Data:        req.Data,
			Description: req.Description,
		},
		Thumbnail: req.Thumbnail,
	}
	return s.saveItem(ctx, item)
}

// SaveFiles stores a file set as one item. The hash covers the
// sorted path set, so the same files in any order collide.
func (s *StoreService) SaveFiles(ctx context.Context, req driving.SaveFilesRequest) (int64, error) {
	if len(req.Files) == 0 {
		return 0, fmt.Errorf("%w: no files", domain.ErrInvalidInput)
	}

	paths := make([]string, len(req.Files))
	for i, f := range req.Files {
		paths[i] = f.Path
	}
	item := &domain.Item{
		Kind:           domain.KindFile,
		Content:        domain.FileDisplayName(req.Files),
		ContentHash:    domain.FileSetHash(paths),
		Timestamp:      time.Now(),
		SourceApp:      req.SourceApp,
		SourceBundleID: req.SourceBundleID,
		Files:          req.Files,
		Thumbnail:      req.Thumbnail,
	}
	return s.saveItem(ctx, item)
}

// saveItem runs the shared dual-write: store first, then the index
// projection. The index document is (re)inserted even for duplicates
// so its timestamp follows the refresh.
func (s *StoreService) saveItem(ctx context.Context, item *domain.Item) (int64, error) {
	if err := item.Validate(); err != nil {
		return 0, err
	}

	id, duplicate, err := s.items.Save(ctx, item)
	if err != nil {
		return 0, fmt.Errorf("saving item: %w", err)
	}

	doc := domain.IndexedDocument{
		ID:        id,
		Content:   item.IndexText(),
		Timestamp: item.Timestamp,
	}
	if err := s.index.Insert(ctx, doc); err != nil {
		logger.Warn("index insert for item %d failed: %v", id, err)
	}

	if duplicate {
		logger.Debug("duplicate content, refreshed item %d", id)
		return 0, nil
	}
	logger.Debug("saved %s item %d", item.Kind, id)
	return id, nil
}

// FetchPage returns a keyset page of items older than before.
func (s *StoreService) FetchPage(ctx context.Context, before *time.Time, limit int) (domain.Page, error) {
	return s.items.GetPage(ctx, before, limit)
}

// FetchByIDs returns full items preserving input order.
func (s *StoreService) FetchByIDs(ctx context.Context, ids []int64) ([]domain.Item, error) {
	return s.items.GetByIDs(ctx, ids)
}

// Get returns one item with its full payload.
func (s *StoreService) Get(ctx context.Context, id int64) (*domain.Item, error) {
	return s.items.GetByID(ctx, id)
}

// CopyToClipboard writes an item's paste text to the clipboard and
// moves it to the top of the history.
func (s *StoreService) CopyToClipboard(ctx context.Context, id int64) error {
	if s.clip == nil {
		return fmt.Errorf("%w: no clipboard available", domain.ErrInvalidInput)
	}
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.clip.WriteText(clipboardText(*item)); err != nil {
		return fmt.Errorf("writing clipboard: %w", err)
	}
	return s.Touch(ctx, id)
}

// clipboardText is what pasting an item produces. Binary payloads
// paste their textual stand-ins.
func clipboardText(it domain.Item) string {
	switch it.Kind {
	case domain.KindImage:
		if it.Image != nil {
			return it.Image.Description
		}
		return ""
	case domain.KindFile:
		paths := make([]string, len(it.Files))
		for i, f := range it.Files {
			paths[i] = f.Path
		}
		return strings.Join(paths, "\n")
	default:
		return it.Content
	}
}

// Touch refreshes an item's timestamp and the index copy of it.
func (s *StoreService) Touch(ctx context.Context, id int64) error {
	now := time.Now()
	if err := s.items.Touch(ctx, id, now); err != nil {
		return fmt.Errorf("touching item %d: %w", id, err)
	}
	s.refreshIndexDoc(ctx, id, now)
	return nil
}

// SetLinkMetadata records a link metadata fetch outcome. A loaded
// title becomes part of the item's index text, so the index document
// is refreshed.
func (s *StoreService) SetLinkMetadata(ctx context.Context, id int64, meta domain.LinkMetadata) error {
	if err := s.items.UpdateLinkMetadata(ctx, id, meta); err != nil {
		return fmt.Errorf("updating link metadata for item %d: %w", id, err)
	}
	s.refreshIndexDoc(ctx, id, time.Time{})
	return nil
}

// SetImageDescription replaces an image item's searchable text,
// typically with recognized text arriving after the capture. The
// description is the image's index projection, so it is refreshed.
func (s *StoreService) SetImageDescription(ctx context.Context, id int64, description string) error {
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("%w: empty description", domain.ErrInvalidInput)
	}
	if err := s.items.UpdateImageDescription(ctx, id, description); err != nil {
		return fmt.Errorf("updating description for item %d: %w", id, err)
	}
	s.refreshIndexDoc(ctx, id, time.Time{})
	return nil
}

// SetFileStatus records an attachment resolution outcome. Statuses
// are display state only and never reach the index.
func (s *StoreService) SetFileStatus(ctx context.Context, id int64, path string, status domain.FileStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: file status %q", domain.ErrInvalidInput, status)
	}
	if err := s.items.UpdateFileStatus(ctx, id, path, status); err != nil {
		return fmt.Errorf("updating file status for item %d: %w", id, err)
	}
	return nil
}

// refreshIndexDoc re-inserts an item's index projection. ts zero
// keeps the stored timestamp. Failures only warn; the index is
// rebuildable.
func (s *StoreService) refreshIndexDoc(ctx context.Context, id int64, ts time.Time) {
	items, err := s.items.GetMetadataByIDs(ctx, []int64{id}, nil)
	if err != nil || len(items) == 0 {
		logger.Warn("index refresh for item %d skipped: %v", id, err)
		return
	}
	if ts.IsZero() {
		ts = items[0].Timestamp
	}
	doc := domain.IndexedDocument{
		ID:        id,
		Content:   items[0].IndexText(),
		Timestamp: ts,
	}
	if err := s.index.Insert(ctx, doc); err != nil {
		logger.Warn("index refresh for item %d failed: %v", id, err)
	}
}

// Delete removes an item from store and index.
func (s *StoreService) Delete(ctx context.Context, id int64) error {
	if err := s.items.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting item %d: %w", id, err)
	}
	if err := s.index.Delete(ctx, id); err != nil {
		logger.Warn("index delete for item %d failed: %v", id, err)
	}
	return nil
}

// Clear removes every item from store and index.
func (s *StoreService) Clear(ctx context.Context) error {
	if err := s.items.Clear(ctx); err != nil {
		return fmt.Errorf("clearing store: %w", err)
	}
	if err := s.index.Clear(ctx); err != nil {
		logger.Warn("index clear failed: %v", err)
	}
	return nil
}

// Prune shrinks the store below targetBytes by deleting the oldest
// items, then mirrors the deletions into the index. Deletions that
// happened before an error are still mirrored, so an interrupted
// prune leaves both sides valid.
func (s *StoreService) Prune(ctx context.Context, targetBytes int64) (int, error) {
	if targetBytes <= 0 {
		return 0, fmt.Errorf("%w: prune target must be positive", domain.ErrInvalidInput)
	}

	deleted, err := s.items.Prune(ctx, targetBytes, s.tuning.PruneLowWater)
	if len(deleted) > 0 {
		if derr := s.index.DeleteBatch(ctx, deleted); derr != nil {
			logger.Warn("index prune of %d documents failed: %v", len(deleted), derr)
		}
	}
	if err != nil {
		return len(deleted), fmt.Errorf("pruning store: %w", err)
	}
	logger.Info("pruned %d items", len(deleted))
	return len(deleted), nil
}

// RebuildIndex drops the index and re-inserts every store row in id
// order, committing batch by batch so a cancelled rebuild leaves a
// valid partial index.
func (s *StoreService) RebuildIndex(ctx context.Context) (int, error) {
	logger.Section("Index Rebuild")
	if err := s.index.Clear(ctx); err != nil {
		return 0, fmt.Errorf("clearing index: %w", err)
	}

	total := 0
	afterID := int64(0)
	for {
		if err := ctx.Err(); err != nil {
			return total, fmt.Errorf("%w: rebuild stopped after %d documents", domain.ErrInterrupted, total)
		}
		rows, err := s.items.IndexRows(ctx, afterID, rebuildBatchSize)
		if err != nil {
			return total, fmt.Errorf("reading store rows: %w", err)
		}
		if len(rows) == 0 {
			break
		}
		if err := s.index.InsertBatch(ctx, rows); err != nil {
			return total, fmt.Errorf("indexing batch: %w", err)
		}
		total += len(rows)
		afterID = rows[len(rows)-1].ID
		logger.Debug("indexed %d documents", total)
	}

	logger.Info("index rebuilt with %d documents", total)
	return total, nil
}

// EnsureIndex rebuilds the index when its document count disagrees
// with the store, when it cannot be read at all, or when a failed
// recall marked it dirty.
func (s *StoreService) EnsureIndex(ctx context.Context) (int, error) {
	if s.indexDirty.Load() {
		logger.Info("index marked dirty by a failed recall, rebuilding")
		n, err := s.RebuildIndex(ctx)
		if err == nil {
			s.indexDirty.Store(false)
		}
		return n, err
	}

	indexed, err := s.index.Count(ctx)
	if err != nil {
		logger.Warn("index unreadable, rebuilding: %v", err)
		return s.RebuildIndex(ctx)
	}
	stored, err := s.items.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting items: %w", err)
	}
	if indexed == uint64(stored) {
		return 0, nil
	}
	logger.Info("index has %d documents, store has %d, rebuilding", indexed, stored)
	return s.RebuildIndex(ctx)
}

// Stats summarizes store and index state.
func (s *StoreService) Stats(ctx context.Context) (driving.StoreStats, error) {
	count, err := s.items.Count(ctx)
	if err != nil {
		return driving.StoreStats{}, fmt.Errorf("counting items: %w", err)
	}
	byKind, err := s.items.CountByKind(ctx)
	if err != nil {
		return driving.StoreStats{}, fmt.Errorf("counting items by kind: %w", err)
	}
	size, err := s.items.SizeBytes(ctx)
	if err != nil {
		return driving.StoreStats{}, fmt.Errorf("measuring store size: %w", err)
	}
	oldest, err := s.items.Oldest(ctx)
	if err != nil {
		return driving.StoreStats{}, fmt.Errorf("finding oldest item: %w", err)
	}

	indexed, err := s.index.Count(ctx)
	if err != nil {
		logger.Warn("index count unavailable: %v", err)
		indexed = 0
	}
	indexSize, err := s.index.SizeBytes(ctx)
	if err != nil {
		logger.Warn("index size unavailable: %v", err)
		indexSize = 0
	}

	return driving.StoreStats{
		Items:            count,
		ByKind:           byKind,
		IndexedDocuments: indexed,
		StoreBytes:       size,
		IndexBytes:       indexSize,
		Oldest:           oldest,
	}, nil
}

// countFor counts live items, optionally restricted to kinds.
func (s *StoreService) countFor(ctx context.Context, kinds []domain.ContentKind) (int64, error) {
	if len(kinds) == 0 {
		n, err := s.items.Count(ctx)
		if err != nil {
			return 0, fmt.Errorf("counting items: %w", err)
		}
		return n, nil
	}
	byKind, err := s.items.CountByKind(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting items: %w", err)
	}
	var n int64
	for _, k := range kinds {
		n += byKind[k]
	}
	return n, nil
}

// Close releases the index and the store.
func (s *StoreService) Close() error {
	return errors.Join(s.index.Close(), s.items.Close())
}
