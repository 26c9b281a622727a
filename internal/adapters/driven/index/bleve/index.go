// Package bleve implements the trigram index port on a Bleve index.
// Documents are shingled into lowercased 3-rune terms by a custom
// analyzer; recall hand-shingles the query the same way and runs a
// min-should-match disjunction so near-miss queries still surface
// candidates for the fuzzy phases.
package bleve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/token/ngram"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/custodia-labs/clipvault/internal/core/domain"
	"github.com/custodia-labs/clipvault/internal/core/ports/driven"
)

// Ensure TrigramIndex implements the interface.
var _ driven.TrigramIndex = (*TrigramIndex)(nil)

const (
	contentField   = "content"
	timestampField = "timestamp"

	docType         = "item"
	trigramAnalyzer = "trigram"
	trigramFilter   = "trigram_3"
)

// TrigramIndex is the Bleve-backed persistent index. The index is a
// derived artifact: every failure mode here is recoverable by a
// rebuild from store rows, so callers treat errors as degradation,
// not data loss.
type TrigramIndex struct {
	// mu guards the handle swap in Clear; Bleve itself is safe for
	// concurrent use.
	mu   sync.RWMutex
	idx  bleve.Index
	path string

	recencyBoostMax float64
	recencyHalfLife time.Duration
}

// NewTrigramIndex opens (or creates) the index under dataDir. An
// empty dataDir defaults to ~/.clipvault/data.
func NewTrigramIndex(dataDir string, tuning domain.Tuning) (*TrigramIndex, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".clipvault", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	path := filepath.Join(dataDir, "index.bleve")
	idx, err := openOrCreate(path)
	if err != nil {
		return nil, err
	}

	t := tuning.WithDefaults()
	return &TrigramIndex{
		idx:             idx,
		path:            path,
		recencyBoostMax: t.RecencyBoostMax,
		recencyHalfLife: t.RecencyHalfLife,
	}, nil
}

// openOrCreate opens an existing index or creates a fresh one when
// the directory does not exist yet.
func openOrCreate(path string) (bleve.Index, error) {
	idx, err := bleve.Open(path)
	if err == nil {
		return idx, nil
	}
	if err != bleve.ErrorIndexPathDoesNotExist {
		return nil, fmt.Errorf("%w: opening index: %w", domain.ErrIndexUnavailable, err)
	}

	m, err := buildMapping()
	if err != nil {
		return nil, err
	}
	idx, err = bleve.New(path, m)
	if err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}
	return idx, nil
}

// buildMapping registers the trigram analyzer and maps the stored
// document: content analyzed into 3-rune shingles, timestamp kept as
// a stored datetime for the recency blend.
func buildMapping() (mapping.IndexMapping, error) {
	m := bleve.NewIndexMapping()

	if err := m.AddCustomTokenFilter(trigramFilter, map[string]interface{}{
		"type": ngram.Name,
		"min":  3.0,
		"max":  3.0,
	}); err != nil {
		return nil, fmt.Errorf("registering trigram filter: %w", err)
	}
	if err := m.AddCustomAnalyzer(trigramAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     single.Name,
		"token_filters": []string{lowercase.Name, trigramFilter},
	}); err != nil {
		return nil, fmt.Errorf("registering trigram analyzer: %w", err)
	}

	itemMapping := bleve.NewDocumentMapping()

	contentMapping := bleve.NewTextFieldMapping()
	contentMapping.Store = true
	contentMapping.Index = true
	contentMapping.Analyzer = trigramAnalyzer
	itemMapping.AddFieldMappingsAt(contentField, contentMapping)

	tsMapping := bleve.NewDateTimeFieldMapping()
	tsMapping.Store = true
	tsMapping.Index = true
	itemMapping.AddFieldMappingsAt(timestampField, tsMapping)

	m.AddDocumentMapping(docType, itemMapping)
	m.DefaultType = docType
	return m, nil
}

// Insert adds or replaces one document.
func (x *TrigramIndex) Insert(_ context.Context, doc domain.IndexedDocument) error {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if err := x.idx.Index(docID(doc.ID), indexEntry(doc)); err != nil {
		return fmt.Errorf("indexing document %d: %w", doc.ID, err)
	}
	return nil
}

// InsertBatch adds or replaces documents in one commit.
func (x *TrigramIndex) InsertBatch(_ context.Context, docs []domain.IndexedDocument) error {
	if len(docs) == 0 {
		return nil
	}
	x.mu.RLock()
	defer x.mu.RUnlock()

	batch := x.idx.NewBatch()
	for _, doc := range docs {
		if err := batch.Index(docID(doc.ID), indexEntry(doc)); err != nil {
			return fmt.Errorf("staging document %d: %w", doc.ID, err)
		}
	}
	if err := x.idx.Batch(batch); err != nil {
		return fmt.Errorf("committing insert batch: %w", err)
	}
	return nil
}

// Delete removes one document. Missing ids are a no-op.
func (x *TrigramIndex) Delete(_ context.Context, id int64) error {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if err := x.idx.Delete(docID(id)); err != nil {
		return fmt.Errorf("deleting document %d: %w", id, err)
	}
	return nil
}

// DeleteBatch removes documents in one commit.
func (x *TrigramIndex) DeleteBatch(_ context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	x.mu.RLock()
	defer x.mu.RUnlock()

	batch := x.idx.NewBatch()
	for _, id := range ids {
		batch.Delete(docID(id))
	}
	if err := x.idx.Batch(batch); err != nil {
		return fmt.Errorf("committing delete batch: %w", err)
	}
	return nil
}

// Recall runs the min-should-match disjunction over the query's
// trigrams and returns up to limit candidates, best blended score
// first. Queries shorter than three runes cannot shingle and return
// nothing; the caller routes those to the store scan paths.
func (x *TrigramIndex) Recall(_ context.Context, queryText string, limit int) ([]domain.SearchCandidate, error) {
	grams := shingle(queryText)
	if len(grams) == 0 {
		return nil, nil
	}

	terms := make([]query.Query, len(grams))
	for i, g := range grams {
		tq := bleve.NewTermQuery(g)
		tq.SetField(contentField)
		terms[i] = tq
	}
	dq := bleve.NewDisjunctionQuery(terms...)
	dq.SetMin(minShould(len(grams)))

	req := bleve.NewSearchRequest(dq)
	req.Size = limit
	if limit <= 0 {
		req.Size = domain.DefaultTuning().RecallLimit
	}
	req.Fields = []string{contentField, timestampField}

	x.mu.RLock()
	res, err := x.idx.Search(req)
	x.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("%w: recalling candidates: %w", domain.ErrIndexUnavailable, err)
	}

	now := time.Now()
	out := make([]domain.SearchCandidate, 0, len(res.Hits))
	for _, hit := range res.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		c := domain.SearchCandidate{ID: id}
		if content, ok := hit.Fields[contentField].(string); ok {
			c.Content = content
		}
		if raw, ok := hit.Fields[timestampField].(string); ok {
			if ts, err := time.Parse(time.RFC3339, raw); err == nil {
				c.Timestamp = ts
			}
		}
		c.RetrievalScore = hit.Score *
			(1 + x.recencyBoostMax*domain.RecencyScore(c.Timestamp, now, x.recencyHalfLife))
		out = append(out, c)
	}

	// The recency blend can reorder hits relative to raw BM25.
	sort.Slice(out, func(i, j int) bool {
		if out[i].RetrievalScore != out[j].RetrievalScore {
			return out[i].RetrievalScore > out[j].RetrievalScore
		}
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Count returns the number of indexed documents.
func (x *TrigramIndex) Count(_ context.Context) (uint64, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	n, err := x.idx.DocCount()
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

// SizeBytes reports the index directory's on-disk footprint.
func (x *TrigramIndex) SizeBytes(_ context.Context) (int64, error) {
	var total int64
	err := filepath.Walk(x.path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("sizing index directory: %w", err)
	}
	return total, nil
}

// Clear drops every document by recreating the index directory.
// Cheaper than enumerating ids, and it also discards any segment
// damage accumulated before a rebuild.
func (x *TrigramIndex) Clear(_ context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if err := x.idx.Close(); err != nil {
		return fmt.Errorf("closing index: %w", err)
	}
	if err := os.RemoveAll(x.path); err != nil {
		return fmt.Errorf("removing index directory: %w", err)
	}

	idx, err := openOrCreate(x.path)
	if err != nil {
		return err
	}
	x.idx = idx
	return nil
}

// Close releases the index.
func (x *TrigramIndex) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.idx.Close()
}

// Path returns the index directory path.
func (x *TrigramIndex) Path() string {
	return x.path
}

// minShould is the number of query trigrams a document must share.
// Longer queries tolerate proportionally more misses so a single typo
// cannot empty the recall set.
func minShould(n int) float64 {
	switch {
	case n >= 20:
		return float64(4 * n / 5)
	case n >= 7:
		return float64(2 * n / 3)
	default:
		return float64((n + 1) / 2)
	}
}

// shingle returns the unique 3-rune windows of the folded text in
// first-appearance order. Must agree with what the trigram analyzer
// produces at index time.
func shingle(text string) []string {
	runes := []rune(strings.ToLower(text))
	if len(runes) < 3 {
		return nil
	}
	seen := make(map[string]struct{}, len(runes)-2)
	out := make([]string, 0, len(runes)-2)
	for i := 0; i+3 <= len(runes); i++ {
		g := string(runes[i : i+3])
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}

// indexEntry shapes a document for the mapping.
func indexEntry(doc domain.IndexedDocument) map[string]interface{} {
	return map[string]interface{}{
		contentField:   doc.Content,
		timestampField: doc.Timestamp.UTC(),
	}
}

func docID(id int64) string {
	return strconv.FormatInt(id, 10)
}
