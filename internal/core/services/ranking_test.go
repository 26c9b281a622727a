package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clipvault/internal/core/domain"
)

func rankFor(t *testing.T, query, content string, ts, now time.Time) (scoredCandidate, bool) {
	t.Helper()
	q := newSearchQuery(query)
	c := domain.SearchCandidate{ID: 1, Content: content, Timestamp: ts}
	return rankCandidate(q, c, now, domain.DefaultTuning())
}

func TestRankCandidate_ExactPhraseBucket(t *testing.T) {
	now := time.Now()

	sc, ok := rankFor(t, "test", "test", now, now)
	require.True(t, ok)
	assert.Equal(t, domain.BucketExactPhrase, sc.match.Bucket)

	sc, ok = rankFor(t, "error log", "the error log from friday", now, now)
	require.True(t, ok)
	assert.Equal(t, domain.BucketExactPhrase, sc.match.Bucket)
}

func TestRankCandidate_AllWordsBucket(t *testing.T) {
	now := time.Now()

	// Both words literal, but the phrase is broken by punctuation.
	sc, ok := rankFor(t, "hello world", "hello, world", now, now)
	require.True(t, ok)
	assert.Equal(t, domain.BucketAllWords, sc.match.Bucket)
}

func TestRankCandidate_PartialBucket(t *testing.T) {
	now := time.Now()

	// "form" only lands on "from" through an edit, so the match is
	// tolerated rather than literal.
	sc, ok := rankFor(t, "form document", "from document", now, now)
	require.True(t, ok)
	assert.Equal(t, domain.BucketPartial, sc.match.Bucket)
}

func TestRankCandidate_ExcludedCandidates(t *testing.T) {
	now := time.Now()

	_, ok := rankFor(t, "test", "toast", now, now)
	assert.False(t, ok)

	_, ok = rankFor(t, "test", "unrelated content here", now, now)
	assert.False(t, ok)
}

func TestRankCandidate_BucketBeatsFineScore(t *testing.T) {
	now := time.Now()
	tn := domain.DefaultTuning()
	q := newSearchQuery("test")

	cands := []domain.SearchCandidate{
		{ID: 1, Content: "testy", Timestamp: now},
		{ID: 2, Content: "test", Timestamp: now},
	}

	var scored []scoredCandidate
	for _, c := range cands {
		sc, ok := rankCandidate(q, c, now, tn)
		require.True(t, ok)
		assert.Equal(t, domain.BucketExactPhrase, sc.match.Bucket)
		scored = append(scored, sc)
	}
	sortMatches(scored)

	// Same bucket: the exact item wins on coverage.
	assert.Equal(t, int64(2), scored[0].match.ID)
	assert.Equal(t, int64(1), scored[1].match.ID)
	assert.Greater(t, scored[0].match.FineScore, scored[1].match.FineScore)
}

func TestRankCandidate_RecencyBreaksNearTies(t *testing.T) {
	now := time.Now()
	q := newSearchQuery("alpha beta")
	tn := domain.DefaultTuning()

	fresh, ok := rankCandidate(q, domain.SearchCandidate{
		ID: 1, Content: "alpha beta", Timestamp: now,
	}, now, tn)
	require.True(t, ok)
	stale, ok := rankCandidate(q, domain.SearchCandidate{
		ID: 2, Content: "alpha beta", Timestamp: now.Add(-30 * 24 * time.Hour),
	}, now, tn)
	require.True(t, ok)

	assert.InDelta(t, fresh.match.FineScore, stale.match.FineScore, 1e-9)
	assert.Greater(t, fresh.match.BlendedScore, stale.match.BlendedScore)
}

func TestRankCandidate_PunctuationOnlyQuery(t *testing.T) {
	now := time.Now()

	sc, ok := rankFor(t, "://", "https://example.com", now, now)
	require.True(t, ok)
	assert.Equal(t, domain.BucketExactPhrase, sc.match.Bucket)
	require.Len(t, sc.ranges, 1)
	assert.Equal(t, 5, sc.ranges[0].start)
	assert.Equal(t, 8, sc.ranges[0].end)
	assert.Equal(t, []int{5, 6, 7}, sc.match.Positions)
	assert.False(t, sc.match.IsPrefix)

	_, ok = rankFor(t, "://", "no scheme here", now, now)
	assert.False(t, ok)
}

func TestRankCandidate_PositionsAscendingWithinContent(t *testing.T) {
	now := time.Now()
	content := "the quick brown fox"

	sc, ok := rankFor(t, "quick brown", content, now, now)
	require.True(t, ok)
	require.NotEmpty(t, sc.match.Positions)

	prev := -1
	for _, p := range sc.match.Positions {
		assert.Greater(t, p, prev)
		assert.Less(t, p, len([]rune(content)))
		prev = p
	}
}

func TestSortMatches_TotalOrder(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	mk := func(id int64, bucket domain.Bucket, blended float64, ts time.Time) scoredCandidate {
		return scoredCandidate{match: domain.FuzzyMatch{
			SearchCandidate: domain.SearchCandidate{ID: id, Timestamp: ts},
			Bucket:          bucket,
			BlendedScore:    blended,
		}}
	}

	scored := []scoredCandidate{
		mk(1, domain.BucketPartial, 999, base),
		mk(2, domain.BucketExactPhrase, 10, base),
		mk(3, domain.BucketAllWords, 500, base),
		mk(4, domain.BucketExactPhrase, 10, base.Add(time.Hour)),
		mk(5, domain.BucketExactPhrase, 10, base),
	}
	sortMatches(scored)

	ids := make([]int64, len(scored))
	for i, sc := range scored {
		ids[i] = sc.match.ID
	}
	// Bucket first; then blended score; then recency; then id.
	assert.Equal(t, []int64{4, 5, 2, 3, 1}, ids)
}

func TestBlend_CapsRecencyContribution(t *testing.T) {
	tn := domain.DefaultTuning()
	now := time.Now()

	newest := blend(100, now, now, tn)
	ancient := blend(100, now.Add(-365*24*time.Hour), now, tn)

	assert.InDelta(t, 100*(1+tn.RecencyBoostMax), newest, 1e-9)
	assert.InDelta(t, 100, ancient, 0.01)

	// A large relevance gap survives any recency difference.
	assert.Greater(t, blend(200, now.Add(-365*24*time.Hour), now, tn), blend(100, now, now, tn))
}
