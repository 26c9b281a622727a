package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clipvault/internal/core/domain"
)

func TestMaxEditDistance(t *testing.T) {
	assert.Equal(t, 0, maxEditDistance(1))
	assert.Equal(t, 0, maxEditDistance(2))
	assert.Equal(t, 1, maxEditDistance(3))
	assert.Equal(t, 1, maxEditDistance(8))
	assert.Equal(t, 2, maxEditDistance(9))
	assert.Equal(t, 2, maxEditDistance(20))
}

func TestEditDistanceBounded(t *testing.T) {
	dist := func(q, tgt string, max int) (int, bool) {
		return editDistanceBounded([]rune(q), []rune(tgt), max)
	}

	t.Run("identical", func(t *testing.T) {
		d, ok := dist("the", "the", 1)
		require.True(t, ok)
		assert.Equal(t, 0, d)
	})

	t.Run("adjacent transposition", func(t *testing.T) {
		d, ok := dist("teh", "the", 1)
		require.True(t, ok)
		assert.Equal(t, 1, d)

		d, ok = dist("form", "from", 1)
		require.True(t, ok)
		assert.Equal(t, 1, d)
	})

	t.Run("leading transposition is not penalized", func(t *testing.T) {
		d, ok := dist("hte", "the", 1)
		require.True(t, ok)
		assert.Equal(t, 1, d)
	})

	t.Run("first character mismatch costs extra", func(t *testing.T) {
		_, ok := dist("cat", "bat", 1)
		assert.False(t, ok)

		d, ok := dist("cat", "bat", 2)
		require.True(t, ok)
		assert.Equal(t, 2, d)
	})

	t.Run("insertion", func(t *testing.T) {
		d, ok := dist("tets", "tests", 1)
		require.True(t, ok)
		assert.Equal(t, 1, d)
	})

	t.Run("length difference aborts early", func(t *testing.T) {
		_, ok := dist("ab", "abcdef", 1)
		assert.False(t, ok)
	})

	t.Run("over tolerance", func(t *testing.T) {
		_, ok := dist("test", "toast", 1)
		assert.False(t, ok)
	})
}

func TestSubsequenceMatch(t *testing.T) {
	sub := func(q, tgt string) (int, bool) {
		return subsequenceMatch([]rune(q), []rune(tgt))
	}

	t.Run("abbreviation with one gap", func(t *testing.T) {
		gaps, ok := sub("impt", "import")
		require.True(t, ok)
		assert.Equal(t, 1, gaps)
	})

	t.Run("contiguous prefix has zero gaps", func(t *testing.T) {
		gaps, ok := sub("tests", "testscript")
		require.True(t, ok)
		assert.Equal(t, 0, gaps)
	})

	t.Run("too short", func(t *testing.T) {
		_, ok := sub("imp", "import")
		assert.False(t, ok)
	})

	t.Run("covers under half the target", func(t *testing.T) {
		_, ok := sub("abcd", "abcdefghij")
		assert.False(t, ok)
	})

	t.Run("first characters must agree", func(t *testing.T) {
		_, ok := sub("mport", "import")
		assert.False(t, ok)
	})

	t.Run("character out of order", func(t *testing.T) {
		_, ok := sub("tesq", "testing")
		assert.False(t, ok)
	})
}

func TestMatchWord_Cascade(t *testing.T) {
	match := func(query, content string, isLast bool) (wordMatch, bool) {
		q := newSearchQuery(query)
		require.Len(t, q.words, 1)
		doc := tokenize(content)
		require.NotZero(t, doc.wordCount())
		return matchWord(&q.words[0], &doc, doc.wordAt(0), isLast)
	}

	t.Run("exact", func(t *testing.T) {
		m, ok := match("hello", "Hello", true)
		require.True(t, ok)
		assert.Equal(t, matchExact, m.kind)
		assert.Equal(t, 5, m.n)
	})

	t.Run("prefix only while typing the last word", func(t *testing.T) {
		m, ok := match("hel", "hello", true)
		require.True(t, ok)
		assert.Equal(t, matchPrefix, m.kind)

		// The same shape matched mid-query counts as a substring.
		m, ok = match("hel", "hello", false)
		require.True(t, ok)
		assert.Equal(t, matchSubstring, m.kind)
	})

	t.Run("substring", func(t *testing.T) {
		m, ok := match("ell", "hello", false)
		require.True(t, ok)
		assert.Equal(t, matchSubstring, m.kind)
		assert.Equal(t, 1, m.off)
		assert.Equal(t, 3, m.n)
	})

	t.Run("fuzzy", func(t *testing.T) {
		m, ok := match("form", "from", true)
		require.True(t, ok)
		assert.Equal(t, matchFuzzy, m.kind)
		assert.Equal(t, 1, m.dist)
	})

	t.Run("subsequence", func(t *testing.T) {
		m, ok := match("impt", "import", true)
		require.True(t, ok)
		assert.Equal(t, matchSubsequence, m.kind)
		assert.Equal(t, 1, m.dist)
	})

	t.Run("no match", func(t *testing.T) {
		_, ok := match("test", "toast", true)
		assert.False(t, ok)

		_, ok = match("zebra", "giraffe", true)
		assert.False(t, ok)
	})
}

func scoreFor(t *testing.T, query, content string) (fuzzyResult, bool) {
	t.Helper()
	q := newSearchQuery(query)
	doc := tokenize(content)
	return scoreDoc(q, &doc, domain.DefaultTuning())
}

func TestScoreDoc_MissingWordExcludes(t *testing.T) {
	_, ok := scoreFor(t, "alpha zzz", "alpha beta content")
	assert.False(t, ok)

	_, ok = scoreFor(t, "unrelated", "some test content")
	assert.False(t, ok)
}

func TestScoreDoc_TypoWithinToleranceMatches(t *testing.T) {
	fz, ok := scoreFor(t, "tost", "test item")
	require.True(t, ok)
	assert.False(t, fz.allLiteral)
	assert.Greater(t, fz.fine, 0.0)
	require.NotEmpty(t, fz.ranges)
	assert.Equal(t, 0, fz.ranges[0].start)
	assert.Equal(t, 4, fz.ranges[0].end)
	assert.Equal(t, domain.HighlightFuzzy, fz.ranges[0].kind)
}

func TestScoreDoc_ScatteredLongWordsExcluded(t *testing.T) {
	// Both query words are present but never adjacent, so the
	// density check drops the candidate.
	_, ok := scoreFor(t, "alpha bravo", "alpha filler words bravo")
	assert.False(t, ok)

	// Reversed order fails the same check.
	_, ok = scoreFor(t, "hello world", "world hello")
	assert.False(t, ok)

	// Adjacent across punctuation passes.
	fz, ok := scoreFor(t, "hello world", "hello, world")
	require.True(t, ok)
	assert.True(t, fz.allLiteral)
}

func TestScoreDoc_ShortWordsSkipDensityCheck(t *testing.T) {
	// "the" is three characters, so the pair is never counted.
	_, ok := scoreFor(t, "the report", "report from the other day")
	assert.True(t, ok)
}

func TestScoreDoc_AcronymFallback(t *testing.T) {
	fz, ok := scoreFor(t, "nyc", "new york city")
	require.True(t, ok)
	assert.False(t, fz.allLiteral)
	require.Len(t, fz.ranges, 3)
	assert.Equal(t, scoredRange{0, 1, domain.HighlightExact}, fz.ranges[0])
	assert.Equal(t, scoredRange{4, 5, domain.HighlightExact}, fz.ranges[1])
	assert.Equal(t, scoredRange{9, 10, domain.HighlightExact}, fz.ranges[2])
	assert.Equal(t, []int{0, 4, 9}, fz.positions)
}

func TestScoreDoc_AcronymNeedsWholeRun(t *testing.T) {
	_, ok := scoreFor(t, "nyc", "new york скороговорка")
	assert.False(t, ok)
}

func TestScoreDoc_CoverageFavorsShortContent(t *testing.T) {
	exact, ok := scoreFor(t, "meeting", "meeting")
	require.True(t, ok)
	buried, ok := scoreFor(t, "meeting", "meeting notes from the quarterly planning session yesterday")
	require.True(t, ok)

	assert.Greater(t, exact.fine, buried.fine)
}

func TestScoreDoc_PositionFavorsEarlyMatches(t *testing.T) {
	early, ok := scoreFor(t, "needle", "my needle in the stack")
	require.True(t, ok)
	late, ok := scoreFor(t, "needle", "aaaa bbbb cccc dddd eeee ffff gggg hhhh iiii jjjj kkkk needle")
	require.True(t, ok)

	assert.False(t, early.isPrefix)
	assert.False(t, late.isPrefix)
	assert.Greater(t, early.fine, late.fine)
}

func TestScoreDoc_PrefixBoost(t *testing.T) {
	prefixed, ok := scoreFor(t, "git", "git status output")
	require.True(t, ok)
	assert.True(t, prefixed.isPrefix)

	embedded, ok := scoreFor(t, "git", "run git status output")
	require.True(t, ok)
	assert.False(t, embedded.isPrefix)
	assert.Greater(t, prefixed.fine, embedded.fine)
}

func TestScoreDoc_TrailingSpaceBoost(t *testing.T) {
	tn := domain.DefaultTuning()
	doc := tokenize("test data")

	plain, ok := scoreDoc(newSearchQuery("test"), &doc, tn)
	require.True(t, ok)
	boosted, ok := scoreDoc(newSearchQuery("test "), &doc, tn)
	require.True(t, ok)

	assert.InDelta(t, plain.fine*tn.TrailingSpaceBoost, boosted.fine, 1e-9)
}

func TestScoreDoc_TrailingSpaceNeedsWordBoundary(t *testing.T) {
	tn := domain.DefaultTuning()
	doc := tokenize("testing data")

	// "test" matches as a prefix of "testing", which does not end at
	// the word boundary, so no boost applies.
	plain, ok := scoreDoc(newSearchQuery("test"), &doc, tn)
	require.True(t, ok)
	spaced, ok := scoreDoc(newSearchQuery("test "), &doc, tn)
	require.True(t, ok)

	assert.InDelta(t, plain.fine, spaced.fine, 1e-9)
}

func TestScoreDoc_LongerWordsWeighMore(t *testing.T) {
	// Same content, one query with a heavier matched word.
	light, ok := scoreFor(t, "logs", "deployment logs archive")
	require.True(t, ok)
	heavy, ok := scoreFor(t, "deployment", "deployment logs archive")
	require.True(t, ok)

	assert.Greater(t, heavy.fine, light.fine)
}

func TestScoreDoc_HighlightRangesAscendingNonOverlapping(t *testing.T) {
	fz, ok := scoreFor(t, "quick brown", "the quick brown fox quick")
	require.True(t, ok)
	require.NotEmpty(t, fz.ranges)

	prevEnd := -1
	for _, r := range fz.ranges {
		assert.GreaterOrEqual(t, r.start, prevEnd)
		assert.Greater(t, r.end, r.start)
		prevEnd = r.end
	}
}

func TestScoreDoc_EmptyQueryExcluded(t *testing.T) {
	_, ok := scoreFor(t, "   ", "anything")
	assert.False(t, ok)
}
