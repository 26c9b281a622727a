package services

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/custodia-labs/clipvault/internal/core/domain"
)

// snippetEllipsis marks a window truncated at either edge. One
// character, so highlight offsets shift by exactly one per edge.
const snippetEllipsis = '…'

// boundaryLookback is how far the window start may move back to land
// on a word boundary.
const boundaryLookback = 10

// buildMatchData converts content-space match ranges into a bounded
// display snippet with snippet-relative highlights.
//
// The window centers on the first matched range: a SnippetBeforeRatio
// share of the budget goes to context before the match, the rest
// after, with unused slack on either side handed to the other so
// short content always fills the window. The match region itself is
// never truncated, even when it exceeds the budget.
//
// Before offsets are handed out, whitespace runs inside the window
// collapse to single spaces; highlight offsets are computed against
// that flattened text. When the match sits below the first line the
// snippet is prefixed with a 1-indexed "L{n}: " marker, and when the
// window starts past character zero an ellipsis follows it. Both
// prefixes shift every highlight by their character length. All
// offsets here are character offsets, never bytes.
func buildMatchData(content string, ranges []scoredRange, tn domain.Tuning) domain.MatchData {
	runes := []rune(content)
	n := len(runes)

	if len(ranges) == 0 {
		flat, _ := flattenRunes(runes, 0, n, tn.SnippetBudget)
		return domain.MatchData{Snippet: flat}
	}

	matchStart := ranges[0].start
	matchEnd := ranges[0].end
	if matchEnd > n {
		matchEnd = n
	}
	if matchStart > matchEnd {
		matchStart = matchEnd
	}

	line := 1
	for _, r := range runes[:matchStart] {
		if r == '\n' {
			line++
		}
	}

	budget := tn.SnippetBudget
	avail := budget - (matchEnd - matchStart)
	if avail < 0 {
		avail = 0
	}
	before := int(float64(budget) * tn.SnippetBeforeRatio)
	if before > avail {
		before = avail
	}
	if before > matchStart {
		before = matchStart
	}
	after := avail - before

	end := matchEnd + after
	if end > n {
		// Hand unused tail capacity back to the head.
		before += end - n
		if before > matchStart {
			before = matchStart
		}
		end = n
	}
	start := matchStart - before

	if start > 0 {
		lb := start - boundaryLookback
		if lb < 0 {
			lb = 0
		}
		for i := start - 1; i >= lb; i-- {
			if unicode.IsSpace(runes[i]) {
				start = i + 1
				break
			}
		}
	}

	marker := ""
	if line > 1 {
		marker = fmt.Sprintf("L%d: ", line)
	}
	markerLen := len([]rune(marker))
	leading := 0
	if start > 0 {
		leading = 1
	}
	trailing := end < n

	maxFlat := budget - markerLen - leading
	if trailing {
		maxFlat--
	}
	if m := matchEnd - start; maxFlat < m {
		maxFlat = m
	}

	flat, posMap := flattenRunes(runes, start, end, maxFlat)
	flatLen := len([]rune(flat))

	var sb strings.Builder
	sb.WriteString(marker)
	if leading == 1 {
		sb.WriteRune(snippetEllipsis)
	}
	sb.WriteString(flat)
	if trailing {
		sb.WriteRune(snippetEllipsis)
	}

	shift := markerLen + leading
	var highlights []domain.HighlightRange
	for _, r := range ranges {
		rs := r.start - start
		re := r.end - start
		if rs < 0 || rs >= len(posMap) {
			continue
		}
		ns := posMap[rs]
		ne := flatLen
		if re < len(posMap) {
			ne = posMap[re]
		}
		if ne > flatLen {
			ne = flatLen
		}
		if ns >= flatLen || ne <= ns {
			continue
		}
		highlights = append(highlights, domain.HighlightRange{
			Start: ns + shift,
			End:   ne + shift,
			Kind:  r.kind,
		})
	}

	return domain.MatchData{
		Snippet:    sb.String(),
		Highlights: highlights,
		LineNumber: line,
	}
}

// flattenRunes collapses whitespace runs in runes[start:end] to single
// spaces, capping output at maxChars. Returns the flattened text and a
// map from window-relative original offsets to flattened offsets; the
// map has one extra entry so end offsets resolve too. Offsets past the
// cap map to the flattened length, which drops their highlights.
func flattenRunes(runes []rune, start, end, maxChars int) (string, []int) {
	if end <= start || maxChars <= 0 {
		return "", []int{0}
	}
	out := make([]rune, 0, end-start)
	posMap := make([]int, 0, end-start+1)
	lastSpace := false
	norm := 0
	for i := start; i < end; i++ {
		posMap = append(posMap, norm)
		if norm >= maxChars {
			continue
		}
		r := runes[i]
		if unicode.IsSpace(r) {
			if lastSpace {
				continue
			}
			lastSpace = true
			r = ' '
		} else {
			lastSpace = false
		}
		out = append(out, r)
		norm++
	}
	posMap = append(posMap, norm)
	if len(out) > 0 && out[len(out)-1] == ' ' {
		out = out[:len(out)-1]
	}
	return string(out), posMap
}

// BuildPreview flattens the head of content for list rendering. No
// highlights, no markers.
func BuildPreview(content string, maxChars int) string {
	runes := []rune(strings.TrimSpace(content))
	flat, _ := flattenRunes(runes, 0, len(runes), maxChars)
	return flat
}
