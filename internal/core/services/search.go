package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/clipvault/internal/core/domain"
	"github.com/custodia-labs/clipvault/internal/logger"
)

// shortQueryBaseScore is the flat relevance for store-scan hits.
// With relevance flat, recency and the prefix boost decide ordering.
const shortQueryBaseScore = 1000

// emptyQueryLimit caps the recent page returned for an empty query.
const emptyQueryLimit = 1000

// Search answers one query. Routing: an empty query returns the
// recent page, queries too short to shingle take the store scan
// paths, everything else goes through trigram recall and the scoring
// pipeline. Every call recomputes from scratch; a superseded query's
// result is simply discarded by the caller.
func (s *StoreService) Search(ctx context.Context, query string, opts domain.SearchOptions) (domain.SearchResponse, error) {
	q := newSearchQuery(query)

	switch {
	case q.trimmedLower == "":
		return s.searchEmpty(ctx, opts)
	case utf8.RuneCountInString(q.trimmedLower) < domain.MinTrigramQueryLen:
		logger.Debug("short query %q: store scan paths", q.trimmedLower)
		return s.searchShort(ctx, q, opts)
	default:
		return s.searchTrigram(ctx, q, opts)
	}
}

// searchEmpty serves the empty query: the newest items with plain
// previews and no highlights.
func (s *StoreService) searchEmpty(ctx context.Context, opts domain.SearchOptions) (domain.SearchResponse, error) {
	limit := opts.Limit
	if limit <= 0 || limit > emptyQueryLimit {
		limit = emptyQueryLimit
	}

	page, err := s.items.GetPage(ctx, nil, limit)
	if err != nil {
		return domain.SearchResponse{}, fmt.Errorf("fetching recent items: %w", err)
	}

	matches := make([]domain.ItemMatch, 0, len(page.Items))
	for _, it := range page.Items {
		if !kindAllowed(it.Kind, opts.Kinds) {
			continue
		}
		matches = append(matches, domain.ItemMatch{
			Item:  it,
			Match: domain.MatchData{Snippet: BuildPreview(it.IndexText(), s.tuning.SnippetBudget)},
		})
	}

	total, err := s.countFor(ctx, opts.Kinds)
	if err != nil {
		return domain.SearchResponse{}, err
	}
	return domain.SearchResponse{Matches: matches, TotalCount: int(total)}, nil
}

// searchShort serves 1-2 character queries with the two bounded scan
// paths: an index-assisted prefix scan over the whole store and a
// substring scan over the most recent items only.
func (s *StoreService) searchShort(ctx context.Context, q *searchQuery, opts domain.SearchOptions) (domain.SearchResponse, error) {
	prefixed, err := s.items.SearchPrefix(ctx, q.trimmedLower, s.tuning.MaxResults)
	if err != nil {
		return domain.SearchResponse{}, fmt.Errorf("prefix scan: %w", err)
	}
	recent, err := s.items.SearchRecentSubstring(ctx, q.trimmedLower, s.tuning.ShortQueryScanLimit, s.tuning.MaxResults)
	if err != nil {
		return domain.SearchResponse{}, fmt.Errorf("substring scan: %w", err)
	}
	return s.scoreScan(ctx, q, mergeCandidates(prefixed, recent), opts)
}

// searchTrigram serves queries long enough to shingle: recall from
// the index, then bucket, fuzzy and snippet phases. When recall
// fails the search degrades to the bounded substring scan instead of
// erroring; the index can be rebuilt later.
func (s *StoreService) searchTrigram(ctx context.Context, q *searchQuery, opts domain.SearchOptions) (domain.SearchResponse, error) {
	logger.Section("Trigram Search")
	logger.Debug("query=%q words=%d", q.trimmedLower, len(q.words))

	cands, err := s.index.Recall(ctx, strings.TrimSpace(q.raw), s.tuning.RecallLimit)
	if err != nil {
		logger.Warn("trigram recall failed, falling back to substring scan: %v", err)
		s.indexDirty.Store(true)
		return s.scanFallback(ctx, q, opts)
	}
	logger.Debug("recall returned %d candidates", len(cands))

	scored, err := s.scoreCandidates(ctx, q, cands)
	if err != nil {
		return domain.SearchResponse{}, err
	}
	sortMatches(scored)

	total := len(scored)
	scored = capMatches(scored, s.tuning.MaxResults, opts.Limit)
	logger.Debug("scored %d matches, returning %d", total, len(scored))

	return s.hydrate(ctx, scored, opts, total)
}

// scanFallback is the degraded path when the index cannot answer:
// a substring scan over recent items, scored without edit tolerance.
func (s *StoreService) scanFallback(ctx context.Context, q *searchQuery, opts domain.SearchOptions) (domain.SearchResponse, error) {
	cands, err := s.items.SearchRecentSubstring(ctx, q.trimmedLower, s.tuning.ShortQueryScanLimit, s.tuning.MaxResults)
	if err != nil {
		return domain.SearchResponse{}, fmt.Errorf("substring fallback: %w", err)
	}
	return s.scoreScan(ctx, q, cands, opts)
}

// scoreCandidates fans recall candidates out across the worker pool.
// Scoring is pure per candidate; results keep candidate order until
// sortMatches runs.
func (s *StoreService) scoreCandidates(ctx context.Context, q *searchQuery, cands []domain.SearchCandidate) ([]scoredCandidate, error) {
	now := time.Now()
	scored := make([]*scoredCandidate, len(cands))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.tuning.Workers())
	for i := range cands {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if sc, ok := rankCandidate(q, cands[i], now, s.tuning); ok {
				scored[i] = &sc
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scoring candidates: %w", err)
	}

	out := make([]scoredCandidate, 0, len(cands))
	for _, sc := range scored {
		if sc != nil {
			out = append(out, *sc)
		}
	}
	return out, nil
}

// scoreScan ranks store-scan candidates: the query must occur as a
// substring, relevance is flat, prefix and recency boosts order the
// rest. No edit tolerance on this path.
func (s *StoreService) scoreScan(ctx context.Context, q *searchQuery, cands []domain.SearchCandidate, opts domain.SearchOptions) (domain.SearchResponse, error) {
	now := time.Now()
	needle := q.trimmedLower
	n := utf8.RuneCountInString(needle)

	scored := make([]scoredCandidate, 0, len(cands))
	for _, c := range cands {
		lower := foldRunes(c.Content)
		bi := strings.Index(lower, needle)
		if bi < 0 {
			continue
		}
		start := utf8.RuneCountInString(lower[:bi])
		ranges := []scoredRange{{start, start + n, domain.HighlightExact}}

		fine := float64(shortQueryBaseScore)
		isPrefix := bi == 0
		if isPrefix {
			fine *= s.tuning.PrefixBoost
		}

		m := domain.FuzzyMatch{
			SearchCandidate: c,
			Bucket:          domain.BucketExactPhrase,
			FineScore:       fine,
			Positions:       rangePositions(ranges),
			IsPrefix:        isPrefix,
		}
		m.BlendedScore = blend(fine, c.Timestamp, now, s.tuning)
		scored = append(scored, scoredCandidate{match: m, ranges: ranges})
	}

	sortMatches(scored)
	total := len(scored)
	scored = capMatches(scored, s.tuning.MaxResults, opts.Limit)
	return s.hydrate(ctx, scored, opts, total)
}

// hydrate fetches item metadata for the ranked matches and renders
// each one's snippet. Input order is preserved; ids the store no
// longer has, or that the kind filter removes, are skipped.
func (s *StoreService) hydrate(ctx context.Context, scored []scoredCandidate, opts domain.SearchOptions, total int) (domain.SearchResponse, error) {
	if len(scored) == 0 {
		return domain.SearchResponse{TotalCount: total}, nil
	}

	ids := make([]int64, len(scored))
	for i := range scored {
		ids[i] = scored[i].match.ID
	}
	items, err := s.items.GetMetadataByIDs(ctx, ids, opts.Kinds)
	if err != nil {
		return domain.SearchResponse{}, fmt.Errorf("hydrating results: %w", err)
	}
	byID := make(map[int64]domain.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	matches := make([]domain.ItemMatch, 0, len(items))
	for i := range scored {
		it, ok := byID[scored[i].match.ID]
		if !ok {
			continue
		}
		matches = append(matches, domain.ItemMatch{
			Item:  it,
			Match: buildMatchData(scored[i].match.Content, scored[i].ranges, s.tuning),
		})
	}

	return domain.SearchResponse{Matches: matches, TotalCount: total}, nil
}

// mergeCandidates concatenates candidate lists, keeping the first
// occurrence of each id.
func mergeCandidates(lists ...[]domain.SearchCandidate) []domain.SearchCandidate {
	seen := make(map[int64]struct{})
	var out []domain.SearchCandidate
	for _, list := range lists {
		for _, c := range list {
			if _, dup := seen[c.ID]; dup {
				continue
			}
			seen[c.ID] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

// capMatches applies the absolute result cap, then the caller's limit.
func capMatches(scored []scoredCandidate, maxResults, limit int) []scoredCandidate {
	if maxResults > 0 && len(scored) > maxResults {
		scored = scored[:maxResults]
	}
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// kindAllowed reports whether a kind passes the filter. An empty
// filter allows everything.
func kindAllowed(k domain.ContentKind, kinds []domain.ContentKind) bool {
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
