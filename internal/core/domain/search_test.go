package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestBucket_Ordering tests that bucket constants order correctly
func TestBucket_Ordering(t *testing.T) {
	assert.Greater(t, BucketExactPhrase, BucketAllWords)
	assert.Greater(t, BucketAllWords, BucketPartial)
	assert.Greater(t, BucketPartial, BucketNone)
}

// TestBucket_String tests bucket names
func TestBucket_String(t *testing.T) {
	assert.Equal(t, "exact", BucketExactPhrase.String())
	assert.Equal(t, "all-words", BucketAllWords.String())
	assert.Equal(t, "partial", BucketPartial.String())
	assert.Equal(t, "none", BucketNone.String())
}

// TestRecencyScore_Now tests that a fresh item scores 1.0
func TestRecencyScore_Now(t *testing.T) {
	now := time.Now()
	assert.Equal(t, 1.0, RecencyScore(now, now, 7*24*time.Hour))
}

// TestRecencyScore_HalfLife tests the halving property
func TestRecencyScore_HalfLife(t *testing.T) {
	now := time.Now()
	halfLife := 7 * 24 * time.Hour

	s := RecencyScore(now.Add(-halfLife), now, halfLife)
	assert.InDelta(t, 0.5, s, 1e-9)

	s = RecencyScore(now.Add(-2*halfLife), now, halfLife)
	assert.InDelta(t, 0.25, s, 1e-9)
}

// TestRecencyScore_FutureClamped tests that future timestamps score 1.0
func TestRecencyScore_FutureClamped(t *testing.T) {
	now := time.Now()
	s := RecencyScore(now.Add(time.Hour), now, 7*24*time.Hour)
	assert.Equal(t, 1.0, s)
}

// TestRecencyScore_ZeroHalfLife tests the degenerate configuration
func TestRecencyScore_ZeroHalfLife(t *testing.T) {
	now := time.Now()
	assert.Equal(t, 0.0, RecencyScore(now, now, 0))
}

// TestHighlightRange_Fields tests HighlightRange structure fields
func TestHighlightRange_Fields(t *testing.T) {
	h := HighlightRange{Start: 3, End: 7, Kind: HighlightExact}
	assert.Equal(t, 3, h.Start)
	assert.Equal(t, 7, h.End)
	assert.Equal(t, HighlightExact, h.Kind)
}

// TestSearchResponse_Fields tests SearchResponse structure fields
func TestSearchResponse_Fields(t *testing.T) {
	resp := SearchResponse{
		Matches: []ItemMatch{
			{Item: Item{ID: 1, Kind: KindText, Content: "hello"}},
		},
		TotalCount: 120,
	}
	assert.Len(t, resp.Matches, 1)
	assert.Equal(t, 120, resp.TotalCount)
}
