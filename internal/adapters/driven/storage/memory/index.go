package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/clipvault/internal/core/domain"
	"github.com/custodia-labs/clipvault/internal/core/ports/driven"
)

// Ensure TrigramIndex implements the interface.
var _ driven.TrigramIndex = (*TrigramIndex)(nil)

// TrigramIndex is an in-memory implementation of driven.TrigramIndex
// for testing. Recall matches documents sharing at least one trigram
// with the query and orders them by overlap, then recency.
type TrigramIndex struct {
	mu   sync.RWMutex
	docs map[int64]domain.IndexedDocument
}

// NewTrigramIndex creates a new in-memory trigram index.
func NewTrigramIndex() *TrigramIndex {
	return &TrigramIndex{docs: make(map[int64]domain.IndexedDocument)}
}

// Insert adds or replaces one document.
func (x *TrigramIndex) Insert(_ context.Context, doc domain.IndexedDocument) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.docs[doc.ID] = doc
	return nil
}

// InsertBatch adds or replaces documents in bulk.
func (x *TrigramIndex) InsertBatch(_ context.Context, docs []domain.IndexedDocument) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, doc := range docs {
		x.docs[doc.ID] = doc
	}
	return nil
}

// Delete removes one document. Missing ids are a no-op.
func (x *TrigramIndex) Delete(_ context.Context, id int64) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.docs, id)
	return nil
}

// DeleteBatch removes documents in bulk.
func (x *TrigramIndex) DeleteBatch(_ context.Context, ids []int64) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, id := range ids {
		delete(x.docs, id)
	}
	return nil
}

// Recall returns candidates sharing trigrams with the query, best
// overlap first, ties broken by recency then id.
func (x *TrigramIndex) Recall(_ context.Context, query string, limit int) ([]domain.SearchCandidate, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	qgrams := trigrams(query)
	if len(qgrams) == 0 {
		return nil, nil
	}

	type hit struct {
		cand   domain.SearchCandidate
		shared int
	}
	var hits []hit
	for _, doc := range x.docs {
		shared := overlap(qgrams, trigrams(doc.Content))
		if shared == 0 {
			continue
		}
		hits = append(hits, hit{
			cand: domain.SearchCandidate{
				ID:             doc.ID,
				Content:        doc.Content,
				Timestamp:      doc.Timestamp,
				RetrievalScore: float64(shared),
			},
			shared: shared,
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].shared != hits[j].shared {
			return hits[i].shared > hits[j].shared
		}
		if !hits[i].cand.Timestamp.Equal(hits[j].cand.Timestamp) {
			return hits[i].cand.Timestamp.After(hits[j].cand.Timestamp)
		}
		return hits[i].cand.ID > hits[j].cand.ID
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	out := make([]domain.SearchCandidate, len(hits))
	for i, h := range hits {
		out[i] = h.cand
	}
	return out, nil
}

// Count returns the number of indexed documents.
func (x *TrigramIndex) Count(_ context.Context) (uint64, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return uint64(len(x.docs)), nil
}

// SizeBytes approximates the index footprint from document text.
func (x *TrigramIndex) SizeBytes(_ context.Context) (int64, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var total int64
	for _, doc := range x.docs {
		total += int64(len(doc.Content)) + 48
	}
	return total, nil
}

// Clear removes every document.
func (x *TrigramIndex) Clear(_ context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.docs = make(map[int64]domain.IndexedDocument)
	return nil
}

// Close releases nothing; it exists to satisfy the interface.
func (x *TrigramIndex) Close() error {
	return nil
}

// trigrams returns the set of 3-rune windows over the folded text.
func trigrams(text string) map[string]struct{} {
	runes := []rune(strings.ToLower(text))
	if len(runes) < 3 {
		return nil
	}
	out := make(map[string]struct{}, len(runes)-2)
	for i := 0; i+3 <= len(runes); i++ {
		out[string(runes[i:i+3])] = struct{}{}
	}
	return out
}

func overlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for g := range a {
		if _, ok := b[g]; ok {
			n++
		}
	}
	return n
}
