package services

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/clipvault/internal/core/domain"
)

// scoredCandidate pairs a ranked match with its content-space
// highlight geometry for the snippet stage.
type scoredCandidate struct {
	match  domain.FuzzyMatch
	ranges []scoredRange
}

// rankCandidate pushes one recall candidate through the bucket and
// fuzzy stages. Returns false when the candidate is excluded. Pure
// per candidate, so the pipeline fans it out across workers.
func rankCandidate(q *searchQuery, c domain.SearchCandidate, now time.Time, tn domain.Tuning) (scoredCandidate, bool) {
	doc := tokenize(c.Content)

	fz, ok := scoreDoc(q, &doc, tn)
	if !ok {
		// Queries with no word atoms ("://", "->") can still match
		// the raw phrase.
		if len(q.words) == 0 {
			return rankPhraseOnly(q, c, &doc, now, tn)
		}
		return scoredCandidate{}, false
	}

	bucket := domain.BucketPartial
	switch {
	case phrasePresent(q, &doc):
		bucket = domain.BucketExactPhrase
	case fz.allLiteral:
		bucket = domain.BucketAllWords
	}

	m := domain.FuzzyMatch{
		SearchCandidate: c,
		Bucket:          bucket,
		FineScore:       fz.fine,
		Positions:       fz.positions,
		IsPrefix:        fz.isPrefix,
	}
	m.BlendedScore = blend(fz.fine, c.Timestamp, now, tn)
	return scoredCandidate{match: m, ranges: fz.ranges}, true
}

// phrasePresent reports whether the whole trimmed query occurs
// verbatim in the content.
func phrasePresent(q *searchQuery, doc *tokenizedDoc) bool {
	return q.trimmedLower != "" && strings.Contains(doc.lowerStr, q.trimmedLower)
}

// rankPhraseOnly scores a candidate against a query that tokenized to
// nothing but punctuation. The phrase itself must occur verbatim.
func rankPhraseOnly(q *searchQuery, c domain.SearchCandidate, doc *tokenizedDoc, now time.Time, tn domain.Tuning) (scoredCandidate, bool) {
	phrase := q.trimmedLower
	if phrase == "" {
		return scoredCandidate{}, false
	}
	bi := strings.Index(doc.lowerStr, phrase)
	if bi < 0 {
		return scoredCandidate{}, false
	}
	start := utf8.RuneCountInString(doc.lowerStr[:bi])
	n := utf8.RuneCountInString(phrase)
	ranges := []scoredRange{{start, start + n, domain.HighlightExact}}

	fine := float64(n*n) * positionBoost(ranges)
	isPrefix := bi == 0
	if isPrefix {
		fine *= tn.PrefixBoost
	}

	m := domain.FuzzyMatch{
		SearchCandidate: c,
		Bucket:          domain.BucketExactPhrase,
		FineScore:       fine,
		Positions:       rangePositions(ranges),
		IsPrefix:        isPrefix,
	}
	m.BlendedScore = blend(fine, c.Timestamp, now, tn)
	return scoredCandidate{match: m, ranges: ranges}, true
}

// blend folds recency into the fine score. The boost is capped at a
// tn.RecencyBoostMax fraction so relevance always dominates recency.
func blend(fine float64, ts, now time.Time, tn domain.Tuning) float64 {
	return fine * (1 + tn.RecencyBoostMax*domain.RecencyScore(ts, now, tn.RecencyHalfLife))
}

// sortMatches orders candidates bucket-major: a higher bucket always
// wins regardless of fine score, then blended score, then recency,
// then id. The id tiebreak makes the order total and deterministic.
func sortMatches(cands []scoredCandidate) {
	sort.Slice(cands, func(i, j int) bool {
		a, b := &cands[i].match, &cands[j].match
		if a.Bucket != b.Bucket {
			return a.Bucket > b.Bucket
		}
		if a.BlendedScore != b.BlendedScore {
			return a.BlendedScore > b.BlendedScore
		}
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		return a.ID > b.ID
	})
}
