package domain

import (
	"math"
	"time"
)

// MinTrigramQueryLen is the shortest query the trigram index can
// answer. Anything shorter cannot form a shingle and takes the
// store's scan paths instead.
const MinTrigramQueryLen = 3

// IndexedDocument is the denormalized projection of an item kept in
// the trigram index. Eventually consistent with the store via the
// orchestrator's dual writes.
type IndexedDocument struct {
	// ID is the item id.
	ID int64

	// Content is the index text copy (see Item.IndexText).
	Content string

	// Timestamp is the item capture time.
	Timestamp time.Time
}

// SearchCandidate is one row recalled from the trigram index.
// Content and timestamp are denormalized copies so the scoring
// phases never round-trip to the store. Never persisted.
type SearchCandidate struct {
	// ID is the item id the candidate refers to.
	ID int64

	// Content is the indexed text copy.
	Content string

	// Timestamp is the item capture time.
	Timestamp time.Time

	// RetrievalScore is the recall-phase relevance blended with
	// recency. Used only to order candidates into scoring.
	RetrievalScore float64
}

// Bucket is the coarse relevance tier a candidate lands in.
// A higher bucket always outranks a lower one regardless of the
// fine score, so exact phrase hits can never be buried by fuzz.
type Bucket int

const (
	// BucketNone means no query word was found; the candidate is dropped.
	BucketNone Bucket = iota

	// BucketPartial means some but not all query words are present.
	BucketPartial

	// BucketAllWords means every query word is present as a substring.
	BucketAllWords

	// BucketExactPhrase means the whole query appears verbatim.
	BucketExactPhrase
)

// String returns a readable bucket name.
func (b Bucket) String() string {
	switch b {
	case BucketExactPhrase:
		return "exact"
	case BucketAllWords:
		return "all-words"
	case BucketPartial:
		return "partial"
	default:
		return "none"
	}
}

// HighlightKind says how a highlighted region matched the query.
type HighlightKind string

const (
	HighlightExact  HighlightKind = "exact"
	HighlightPrefix HighlightKind = "prefix"
	HighlightFuzzy  HighlightKind = "fuzzy"
)

// HighlightRange marks a matched region of a specific string.
// Offsets count Unicode scalars, never bytes or UTF-16 units;
// consumers on other indexing schemes convert at their boundary.
// Invariant: 0 <= Start <= End <= character length of the text.
type HighlightRange struct {
	// Start is the first highlighted character.
	Start int

	// End is one past the last highlighted character.
	End int

	// Kind says how the region matched.
	Kind HighlightKind
}

// FuzzyMatch is a candidate that survived bucket scoring and fuzzy
// matching. Ephemeral, produced per query.
type FuzzyMatch struct {
	SearchCandidate

	// Bucket is the coarse tier; dominates ordering.
	Bucket Bucket

	// FineScore is the fuzzy matcher's relevance within the bucket.
	FineScore float64

	// BlendedScore is FineScore with the recency factor applied.
	BlendedScore float64

	// Positions are the matched character offsets into Content,
	// ascending, deduplicated.
	Positions []int

	// IsPrefix reports whether the query prefixes the matched region.
	IsPrefix bool
}

// MatchData is the display payload for one search hit. Highlight
// offsets are relative to Snippet, not the original content.
type MatchData struct {
	// Snippet is the bounded display excerpt, whitespace-flattened.
	Snippet string

	// Highlights are the matched ranges within Snippet.
	Highlights []HighlightRange

	// LineNumber is the 1-indexed source line of the match.
	LineNumber int
}

// ItemMatch pairs a hydrated item with its match presentation.
type ItemMatch struct {
	// Item is the matched item, hydrated without binary payloads.
	Item Item

	// Match is the snippet and highlights for rendering.
	Match MatchData
}

// SearchResponse is the full answer to one search call.
type SearchResponse struct {
	// Matches are the ranked hits, best first.
	Matches []ItemMatch

	// TotalCount is the number of matches before truncation.
	TotalCount int
}

// SearchOptions filters a search or browse call.
type SearchOptions struct {
	// Kinds restricts results to the given content kinds.
	// Empty means all kinds.
	Kinds []ContentKind

	// Limit caps the number of returned matches. Zero means the
	// tuning default.
	Limit int
}

// Page is one keyset-paginated slice of the store.
type Page struct {
	// Items are the page rows, newest first.
	Items []Item

	// HasMore reports whether older items remain past this page.
	HasMore bool
}

// RecencyScore returns the exponential decay factor for an item's
// age: 1.0 for an item captured now, halving every halfLife.
func RecencyScore(ts, now time.Time, halfLife time.Duration) float64 {
	if halfLife <= 0 {
		return 0
	}
	age := now.Sub(ts)
	if age <= 0 {
		return 1.0
	}
	return math.Exp(-age.Seconds() * math.Ln2 / halfLife.Seconds())
}
