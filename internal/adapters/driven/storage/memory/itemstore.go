package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/clipvault/internal/core/domain"
	"github.com/custodia-labs/clipvault/internal/core/ports/driven"
)

// Ensure ItemStore implements the interface.
var _ driven.ItemStore = (*ItemStore)(nil)

// ItemStore is an in-memory implementation of driven.ItemStore for
// testing. It mirrors the SQLite adapter's semantics, including hash
// dedup, keyset pagination and size-based pruning.
type ItemStore struct {
	mu     sync.RWMutex
	items  map[int64]domain.Item
	byHash map[string]int64
	nextID int64
}

// NewItemStore creates a new in-memory item store.
func NewItemStore() *ItemStore {
	return &ItemStore{
		items:  make(map[int64]domain.Item),
		byHash: make(map[string]int64),
		nextID: 1,
	}
}

// Save inserts the item or refreshes the timestamp of the item
// already holding its content hash.
func (s *ItemStore) Save(_ context.Context, item *domain.Item) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byHash[item.ContentHash]; ok {
		existing := s.items[id]
		existing.Timestamp = item.Timestamp
		s.items[id] = existing
		return id, true, nil
	}

	id := s.nextID
	s.nextID++
	stored := *item
	stored.ID = id
	s.items[id] = stored
	s.byHash[stored.ContentHash] = id
	return id, false, nil
}

// GetByID retrieves one item with its full payload.
func (s *ItemStore) GetByID(_ context.Context, id int64) (*domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &it, nil
}

// GetByIDs retrieves items preserving input order, skipping missing ids.
func (s *ItemStore) GetByIDs(_ context.Context, ids []int64) ([]domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Item, 0, len(ids))
	for _, id := range ids {
		if it, ok := s.items[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

// GetMetadataByIDs retrieves items without their binary payloads.
func (s *ItemStore) GetMetadataByIDs(_ context.Context, ids []int64, kinds []domain.ContentKind) ([]domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Item, 0, len(ids))
	for _, id := range ids {
		it, ok := s.items[id]
		if !ok {
			continue
		}
		if !kindIn(it.Kind, kinds) {
			continue
		}
		out = append(out, stripBinary(it))
	}
	return out, nil
}

// GetPage returns items strictly older than before, newest first.
func (s *ItemStore) GetPage(_ context.Context, before *time.Time, limit int) (domain.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ordered := s.orderedDesc()
	var rows []domain.Item
	for _, it := range ordered {
		if before != nil && !it.Timestamp.Before(*before) {
			continue
		}
		rows = append(rows, stripBinary(it))
	}

	hasMore := false
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
		hasMore = true
	}
	return domain.Page{Items: rows, HasMore: hasMore}, nil
}

// SearchPrefix returns candidates whose index text starts with
// prefix, case-insensitive, newest first.
func (s *ItemStore) SearchPrefix(_ context.Context, prefix string, limit int) ([]domain.SearchCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(prefix)
	var out []domain.SearchCandidate
	for _, it := range s.orderedDesc() {
		if limit > 0 && len(out) >= limit {
			break
		}
		text := it.IndexText()
		if strings.HasPrefix(strings.ToLower(text), needle) {
			out = append(out, candidateFor(it, text))
		}
	}
	return out, nil
}

// SearchRecentSubstring returns candidates containing needle among
// the scanLimit most recent items.
func (s *ItemStore) SearchRecentSubstring(_ context.Context, needle string, scanLimit, limit int) ([]domain.SearchCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	folded := strings.ToLower(needle)
	var out []domain.SearchCandidate
	for i, it := range s.orderedDesc() {
		if scanLimit > 0 && i >= scanLimit {
			break
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		text := it.IndexText()
		if strings.Contains(strings.ToLower(text), folded) {
			out = append(out, candidateFor(it, text))
		}
	}
	return out, nil
}

// Touch refreshes an item's timestamp.
func (s *ItemStore) Touch(_ context.Context, id int64, ts time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	it.Timestamp = ts
	s.items[id] = it
	return nil
}

// UpdateLinkMetadata transitions a link item's metadata state.
func (s *ItemStore) UpdateLinkMetadata(_ context.Context, id int64, meta domain.LinkMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	m := meta
	it.Link = &m
	s.items[id] = it
	return nil
}

// UpdateImageDescription replaces an image item's searchable text.
func (s *ItemStore) UpdateImageDescription(_ context.Context, id int64, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	if it.Kind != domain.KindImage || it.Image == nil {
		return domain.ErrInvalidInput
	}
	img := *it.Image
	img.Description = description
	it.Image = &img
	it.Content = description
	s.items[id] = it
	return nil
}

// UpdateFileStatus records resolution results for one attachment.
func (s *ItemStore) UpdateFileStatus(_ context.Context, id int64, path string, status domain.FileStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	files := make([]domain.FileAttachment, len(it.Files))
	copy(files, it.Files)
	for i := range files {
		if files[i].Path == path {
			files[i].Status = status
		}
	}
	it.Files = files
	s.items[id] = it
	return nil
}

// Delete removes an item. Missing ids are a no-op.
func (s *ItemStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(id)
	return nil
}

// Clear removes every item.
func (s *ItemStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[int64]domain.Item)
	s.byHash = make(map[string]int64)
	return nil
}

// Prune deletes the oldest items until the projected size is at most
// lowWater of targetBytes.
func (s *ItemStore) Prune(ctx context.Context, targetBytes int64, lowWater float64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.sizeLocked()
	if total <= targetBytes {
		return nil, nil
	}

	floor := int64(float64(targetBytes) * lowWater)
	ordered := s.orderedDesc()

	var deleted []int64
	for i := len(ordered) - 1; i >= 0 && total > floor; i-- {
		if err := ctx.Err(); err != nil {
			return deleted, domain.ErrInterrupted
		}
		it := ordered[i]
		total -= itemBytes(it)
		s.remove(it.ID)
		deleted = append(deleted, it.ID)
	}
	return deleted, nil
}

// IndexRows returns index projections for items with id greater than
// afterID, ascending.
func (s *ItemStore) IndexRows(_ context.Context, afterID int64, limit int) ([]domain.IndexedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.items))
	for id := range s.items {
		if id > afterID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	rows := make([]domain.IndexedDocument, 0, len(ids))
	for _, id := range ids {
		it := s.items[id]
		rows = append(rows, domain.IndexedDocument{
			ID:        id,
			Content:   it.IndexText(),
			Timestamp: it.Timestamp,
		})
	}
	return rows, nil
}

// Count returns the number of live items.
func (s *ItemStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.items)), nil
}

// Oldest returns the capture time of the oldest live item.
func (s *ItemStore) Oldest(_ context.Context) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var oldest time.Time
	for _, it := range s.items {
		if oldest.IsZero() || it.Timestamp.Before(oldest) {
			oldest = it.Timestamp
		}
	}
	return oldest, nil
}

// CountByKind returns live item counts grouped by content kind.
func (s *ItemStore) CountByKind(_ context.Context) (map[domain.ContentKind]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[domain.ContentKind]int64)
	for _, it := range s.items {
		out[it.Kind]++
	}
	return out, nil
}

// SizeBytes reports the approximate in-memory payload size.
func (s *ItemStore) SizeBytes(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sizeLocked(), nil
}

// Close releases nothing; it exists to satisfy the interface.
func (s *ItemStore) Close() error {
	return nil
}

func (s *ItemStore) remove(id int64) {
	it, ok := s.items[id]
	if !ok {
		return
	}
	delete(s.items, id)
	delete(s.byHash, it.ContentHash)
}

// orderedDesc returns all items newest first, ties broken by id desc.
func (s *ItemStore) orderedDesc() []domain.Item {
	out := make([]domain.Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (s *ItemStore) sizeLocked() int64 {
	var total int64
	for _, it := range s.items {
		total += itemBytes(it)
	}
	return total
}

// itemBytes approximates an item's stored footprint, the way the
// SQLite adapter charges row payloads.
func itemBytes(it domain.Item) int64 {
	n := int64(len(it.Content)) + int64(len(it.Thumbnail)) + 64
	if it.Image != nil {
		n += int64(len(it.Image.Data)) + int64(len(it.Image.Description))
	}
	for _, f := range it.Files {
		n += int64(len(f.Path)) + int64(len(f.Filename)) + int64(len(f.Locator))
	}
	return n
}

func stripBinary(it domain.Item) domain.Item {
	it.Thumbnail = nil
	if it.Image != nil {
		it.Image = &domain.ImageContent{Description: it.Image.Description}
	}
	return it
}

func candidateFor(it domain.Item, text string) domain.SearchCandidate {
	return domain.SearchCandidate{
		ID:        it.ID,
		Content:   text,
		Timestamp: it.Timestamp,
	}
}

func kindIn(k domain.ContentKind, kinds []domain.ContentKind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}
