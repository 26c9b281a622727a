package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestDefaultTuning_Values tests the tuned defaults
func TestDefaultTuning_Values(t *testing.T) {
	tn := DefaultTuning()

	assert.Equal(t, 2000, tn.RecallLimit)
	assert.Equal(t, 5000, tn.MaxResults)
	assert.Equal(t, 20000, tn.ShortQueryScanLimit)
	assert.Equal(t, 0.1, tn.RecencyBoostMax)
	assert.Equal(t, 7*24*time.Hour, tn.RecencyHalfLife)
	assert.Equal(t, 2.0, tn.PrefixBoost)
	assert.Equal(t, 1.2, tn.TrailingSpaceBoost)
	assert.Equal(t, 0.25, tn.DensityThreshold)
	assert.Equal(t, 200, tn.SnippetBudget)
	assert.Equal(t, 0.15, tn.SnippetBeforeRatio)
	assert.Equal(t, 0.8, tn.PruneLowWater)
}

// TestTuning_WithDefaults tests zero-field filling
func TestTuning_WithDefaults(t *testing.T) {
	tn := Tuning{RecallLimit: 500}.WithDefaults()

	assert.Equal(t, 500, tn.RecallLimit)
	assert.Equal(t, 5000, tn.MaxResults)
	assert.Equal(t, 7*24*time.Hour, tn.RecencyHalfLife)
}

// TestTuning_Workers tests scoring pool sizing
func TestTuning_Workers(t *testing.T) {
	tn := Tuning{ScoringWorkers: 4}
	assert.Equal(t, 4, tn.Workers())

	// Unset reserves CPUs for the caller but never drops below one.
	tn = Tuning{}
	assert.GreaterOrEqual(t, tn.Workers(), 1)
}
