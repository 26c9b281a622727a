package services

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/clipvault/internal/core/domain"
)

// Fine-score shaping constants. Query words weigh len² so longer,
// more informative words dominate; coverage and position boosts favor
// short content that is mostly match, near its start.
const (
	coverageBoostThreshold = 0.4
	coverageBoostMax       = 3.0
	positionBoostWindow    = 50
	positionBoostMax       = 1.5
	positionBoostMin       = 1.1
)

// wordMatchKind orders the match cascade, strongest first.
type wordMatchKind int

const (
	matchNone wordMatchKind = iota
	matchExact
	matchPrefix
	matchSubstring
	matchAcronym
	matchFuzzy
	matchSubsequence
)

// literal reports whether the match implies the query word is present
// verbatim in the content, as opposed to tolerated via edits.
func (k wordMatchKind) literal() bool {
	switch k {
	case matchExact, matchPrefix, matchSubstring:
		return true
	default:
		return false
	}
}

// highlightKind maps a match kind to its display kind.
func (k wordMatchKind) highlightKind() domain.HighlightKind {
	switch k {
	case matchExact, matchSubstring, matchAcronym:
		return domain.HighlightExact
	case matchPrefix:
		return domain.HighlightPrefix
	default:
		return domain.HighlightFuzzy
	}
}

// wordMatch describes how one query word matched one document word.
type wordMatch struct {
	kind wordMatchKind

	// dist is the edit distance for fuzzy matches or the gap count
	// for subsequence matches.
	dist int

	// off is the match start within the doc word, in characters.
	off int

	// n is the matched character count within the doc word.
	n int
}

// queryWord is one query atom, folded, with its precomputed weights.
type queryWord struct {
	text   string
	runes  []rune
	weight float64
	long   bool
	tol    int
}

// searchQuery is the query-side tokenization, built once per search
// call and shared across every candidate.
type searchQuery struct {
	raw           string
	trimmedLower  string
	trailingSpace bool
	words         []queryWord
}

// newSearchQuery folds and tokenizes a query.
func newSearchQuery(query string) *searchQuery {
	trimmed := strings.TrimSpace(query)
	sq := &searchQuery{
		raw:           query,
		trimmedLower:  foldRunes(trimmed),
		trailingSpace: trimmed != "" && endsWithSpace(query),
	}
	for _, w := range queryWords(query) {
		runes := []rune(w)
		sq.words = append(sq.words, queryWord{
			text:   w,
			runes:  runes,
			weight: float64(len(runes) * len(runes)),
			long:   len(runes) > 3,
			tol:    maxEditDistance(len(runes)),
		})
	}
	return sq
}

func endsWithSpace(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsSpace(r)
}

// foldRunes lower-cases rune by rune, keeping length stable so
// character offsets computed against the folded text remain valid
// against the original.
func foldRunes(s string) string {
	rs := []rune(s)
	for i, r := range rs {
		rs[i] = unicode.ToLower(r)
	}
	return string(rs)
}

// maxEditDistance returns the edit tolerance for a query word:
// short words tolerate nothing, medium words one edit, long words two.
func maxEditDistance(wordLen int) int {
	switch {
	case wordLen < 3:
		return 0
	case wordLen <= 8:
		return 1
	default:
		return 2
	}
}

// editDistanceBounded computes the optimal-string-alignment distance
// (Levenshtein plus adjacent transpositions) between query and target,
// aborting as soon as every cell of a row exceeds maxDist. A first
// character mismatch costs one extra edit unless it is a transposition
// of the first two characters, so "hte" still finds "the" while "bat"
// does not absorb "cat".
func editDistanceBounded(query, target []rune, maxDist int) (int, bool) {
	qn, tn := len(query), len(target)
	diff := qn - tn
	if diff < 0 {
		diff = -diff
	}
	if diff > maxDist {
		return 0, false
	}
	if qn == 0 {
		return tn, tn <= maxDist
	}
	if tn == 0 {
		return qn, qn <= maxDist
	}

	penalty := 0
	if query[0] != target[0] {
		transposed := qn >= 2 && tn >= 2 && query[0] == target[1] && query[1] == target[0]
		if !transposed {
			penalty = 1
		}
	}

	prev2 := make([]int, tn+1)
	prev := make([]int, tn+1)
	curr := make([]int, tn+1)
	for j := 0; j <= tn; j++ {
		prev[j] = j
	}

	for i := 1; i <= qn; i++ {
		curr[0] = i
		rowMin := curr[0]
		for j := 1; j <= tn; j++ {
			cost := 1
			if query[i-1] == target[j-1] {
				cost = 0
			}
			d := prev[j] + 1 // deletion
			if ins := curr[j-1] + 1; ins < d {
				d = ins
			}
			if sub := prev[j-1] + cost; sub < d {
				d = sub
			}
			if i > 1 && j > 1 && query[i-1] == target[j-2] && query[i-2] == target[j-1] {
				if tr := prev2[j-2] + 1; tr < d {
					d = tr
				}
			}
			curr[j] = d
			if d < rowMin {
				rowMin = d
			}
		}
		if rowMin > maxDist {
			return 0, false
		}
		prev2, prev, curr = prev, curr, prev2
	}

	d := prev[tn] + penalty
	if d > maxDist {
		return 0, false
	}
	return d, true
}

// subsequenceMatch reports whether query appears in target as an
// ordered subsequence, for abbreviation typing like "impt" finding
// "import". Requires at least four query characters, a shorter query
// than target, at least half the target covered, and matching first
// characters. Returns the number of gaps between matched segments.
func subsequenceMatch(query, target []rune) (int, bool) {
	qn, tn := len(query), len(target)
	if qn <= 3 || qn >= tn || qn*2 < tn {
		return 0, false
	}
	if query[0] != target[0] {
		return 0, false
	}

	gaps := 0
	prev := -1
	ti := 0
	for qi := 0; qi < qn; qi++ {
		for ti < tn && target[ti] != query[qi] {
			ti++
		}
		if ti == tn {
			return 0, false
		}
		if prev >= 0 && ti != prev+1 {
			gaps++
		}
		prev = ti
		ti++
	}
	return gaps, true
}

// matchWord runs the match cascade for one query word against one
// document word. Both sides arrive folded. Prefix matching applies
// only to the last query word, where the user is still typing.
func matchWord(qw *queryWord, doc *tokenizedDoc, dw wordToken, isLast bool) (wordMatch, bool) {
	if qw.text == dw.text {
		return wordMatch{kind: matchExact, n: dw.end - dw.start}, true
	}
	if isLast && len(qw.runes) >= 2 && strings.HasPrefix(dw.text, qw.text) {
		return wordMatch{kind: matchPrefix, n: len(qw.runes)}, true
	}
	if bi := strings.Index(dw.text, qw.text); bi >= 0 {
		off := utf8.RuneCountInString(dw.text[:bi])
		return wordMatch{kind: matchSubstring, off: off, n: len(qw.runes)}, true
	}
	if qw.tol > 0 {
		if d, ok := editDistanceBounded(qw.runes, doc.lower[dw.start:dw.end], qw.tol); ok {
			return wordMatch{kind: matchFuzzy, dist: d, n: dw.end - dw.start}, true
		}
	}
	if gaps, ok := subsequenceMatch(qw.runes, doc.lower[dw.start:dw.end]); ok {
		return wordMatch{kind: matchSubsequence, dist: gaps, n: dw.end - dw.start}, true
	}
	return wordMatch{}, false
}

// kindFactor scales a query word's weight by how it matched.
func kindFactor(m wordMatch) float64 {
	switch m.kind {
	case matchExact, matchPrefix, matchAcronym:
		return 1.0
	case matchSubstring:
		return 0.9
	case matchFuzzy:
		return 1.0 / float64(1+m.dist)
	case matchSubsequence:
		return 1.0 / float64(2+m.dist)
	default:
		return 0
	}
}

// scoredRange is a matched region in content space, pre-snippet.
type scoredRange struct {
	start int
	end   int
	kind  domain.HighlightKind
}

// fuzzyResult carries one candidate's fine score and match geometry.
type fuzzyResult struct {
	fine       float64
	ranges     []scoredRange
	positions  []int
	isPrefix   bool
	allLiteral bool
}

// scoreDoc runs the fuzzy matcher for one candidate. Returns false
// when the candidate must be excluded: a query word that matched no
// document word, or matched words scattered below the density
// threshold. Pure: safe to run across candidates in parallel.
//
// Matching makes two passes over the shared tokenization. The first
// is query-word-major so every query word sees every document word,
// which missing-atom and density need. The second is document-word-
// major, consuming at most one query word per document word, so no
// region is highlighted twice.
func scoreDoc(q *searchQuery, doc *tokenizedDoc, tn domain.Tuning) (fuzzyResult, bool) {
	nq := len(q.words)
	if nq == 0 {
		return fuzzyResult{}, false
	}

	best := make([]wordMatch, nq)
	matchedAt := make([][]int, nq)

	for qi := range q.words {
		isLast := qi == nq-1
		for wi := 0; wi < doc.wordCount(); wi++ {
			m, ok := matchWord(&q.words[qi], doc, doc.wordAt(wi), isLast)
			if !ok {
				continue
			}
			matchedAt[qi] = append(matchedAt[qi], wi)
			if best[qi].kind == matchNone || m.kind < best[qi].kind {
				best[qi] = m
			}
		}
	}

	// A single-word query can still land as an acronym: "nyc" spells
	// the first letters of "new york city".
	acronym := false
	acronymStart := 0
	if nq == 1 && len(matchedAt[0]) == 0 && len(q.words[0].runes) >= 3 {
		if wi, ok := acronymAt(q.words[0].runes, doc); ok {
			matchedAt[0] = append(matchedAt[0], wi)
			best[0] = wordMatch{kind: matchAcronym}
			acronym = true
			acronymStart = wi
		}
	}

	// Missing-atom exclusion: every query word must land somewhere.
	for qi := range q.words {
		if len(matchedAt[qi]) == 0 {
			return fuzzyResult{}, false
		}
	}

	// Density check over long query words: enough adjacent query
	// word pairs must sit on adjacent document words.
	pairs, contiguous := 0, 0
	for qi := 0; qi+1 < nq; qi++ {
		if !q.words[qi].long || !q.words[qi+1].long {
			continue
		}
		pairs++
		if anyAdjacent(matchedAt[qi], matchedAt[qi+1]) {
			contiguous++
		}
	}
	if pairs > 0 && float64(contiguous) < tn.DensityThreshold*float64(pairs) {
		return fuzzyResult{}, false
	}

	var ranges []scoredRange
	if acronym {
		for k := range q.words[0].runes {
			st := doc.wordAt(acronymStart + k).start
			ranges = append(ranges, scoredRange{st, st + 1, domain.HighlightExact})
		}
	} else {
		ranges = highlightRanges(q, doc)
	}

	base := 0.0
	allLiteral := true
	for qi := range q.words {
		base += q.words[qi].weight * kindFactor(best[qi])
		if !best[qi].kind.literal() {
			allLiteral = false
		}
	}

	score := base * coverageBoost(ranges, doc) * positionBoost(ranges)

	isPrefix := strings.HasPrefix(doc.lowerStr, q.trimmedLower)
	if isPrefix {
		score *= tn.PrefixBoost
	}
	if q.trailingSpace && endsAtWordBoundary(ranges, doc) {
		score *= tn.TrailingSpaceBoost
	}

	return fuzzyResult{
		fine:       score,
		ranges:     ranges,
		positions:  rangePositions(ranges),
		isPrefix:   isPrefix,
		allLiteral: allLiteral,
	}, true
}

// highlightRanges walks document words in order, consuming at most
// one query word per document word, and emits matched regions in
// ascending, non-overlapping order.
func highlightRanges(q *searchQuery, doc *tokenizedDoc) []scoredRange {
	nq := len(q.words)
	var ranges []scoredRange
	for wi := 0; wi < doc.wordCount(); wi++ {
		dw := doc.wordAt(wi)
		for qi := range q.words {
			m, ok := matchWord(&q.words[qi], doc, dw, qi == nq-1)
			if !ok {
				continue
			}
			start := dw.start + m.off
			ranges = append(ranges, scoredRange{start, start + m.n, m.kind.highlightKind()})
			break
		}
	}
	return ranges
}

// acronymAt scans for a word run whose first letters spell q.
func acronymAt(q []rune, doc *tokenizedDoc) (int, bool) {
	n := len(q)
	for wi := 0; wi+n <= doc.wordCount(); wi++ {
		ok := true
		for k := 0; k < n; k++ {
			if doc.lower[doc.wordAt(wi+k).start] != q[k] {
				ok = false
				break
			}
		}
		if ok {
			return wi, true
		}
	}
	return 0, false
}

// anyAdjacent reports whether some index in b directly follows some
// index in a. Both slices are ascending.
func anyAdjacent(a, b []int) bool {
	for _, ai := range a {
		for _, bi := range b {
			if bi == ai+1 {
				return true
			}
			if bi > ai+1 {
				break
			}
		}
	}
	return false
}

// coverageBoost rewards content that is mostly match: above the
// threshold the boost climbs linearly to coverageBoostMax, so a short
// note that *is* the answer beats a log file that merely contains it.
func coverageBoost(ranges []scoredRange, doc *tokenizedDoc) float64 {
	totalWordChars := 0
	for i := 0; i < doc.wordCount(); i++ {
		w := doc.wordAt(i)
		totalWordChars += w.end - w.start
	}
	if totalWordChars == 0 {
		return 1.0
	}
	matched := 0
	for _, r := range ranges {
		matched += r.end - r.start
	}
	cov := float64(matched) / float64(totalWordChars)
	if cov <= coverageBoostThreshold {
		return 1.0
	}
	if cov > 1 {
		cov = 1
	}
	frac := (cov - coverageBoostThreshold) / (1 - coverageBoostThreshold)
	return 1.0 + frac*(coverageBoostMax-1.0)
}

// positionBoost rewards matches near the start of the content,
// fading from positionBoostMax at offset zero to nothing past the
// window.
func positionBoost(ranges []scoredRange) float64 {
	if len(ranges) == 0 {
		return 1.0
	}
	first := ranges[0].start
	if first >= positionBoostWindow {
		return 1.0
	}
	frac := float64(first) / float64(positionBoostWindow)
	return positionBoostMax - frac*(positionBoostMax-positionBoostMin)
}

// endsAtWordBoundary reports whether the last matched region ends
// exactly where a document word ends.
func endsAtWordBoundary(ranges []scoredRange, doc *tokenizedDoc) bool {
	if len(ranges) == 0 {
		return false
	}
	last := ranges[0].end
	for _, r := range ranges[1:] {
		if r.end > last {
			last = r.end
		}
	}
	for i := 0; i < doc.wordCount(); i++ {
		if doc.wordAt(i).end == last {
			return true
		}
	}
	return false
}

// rangePositions expands ranges into the flat ascending character
// position list carried on the match.
func rangePositions(ranges []scoredRange) []int {
	var out []int
	prev := -1
	for _, r := range ranges {
		for p := r.start; p < r.end; p++ {
			if p > prev {
				out = append(out, p)
				prev = p
			}
		}
	}
	return out
}
