package domain

import (
	"runtime"
	"time"
)

// Tuning collects the scoring and pruning knobs the orchestrator is
// constructed with. The defaults are empirically tuned, not derived;
// they are exposed here so they can be calibrated against real usage
// instead of hiding in constants.
type Tuning struct {
	// RecallLimit caps trigram recall candidates per query.
	RecallLimit int

	// MaxResults caps ranked matches after scoring.
	MaxResults int

	// ShortQueryScanLimit bounds the substring scan over recent
	// items on the short-query path. Full-corpus substring scans
	// are too slow without an index.
	ShortQueryScanLimit int

	// RecencyBoostMax caps the recency contribution to a blended
	// score, keeping relevance dominant.
	RecencyBoostMax float64

	// RecencyHalfLife is the age at which the recency factor halves.
	RecencyHalfLife time.Duration

	// PrefixBoost multiplies scores when the query prefixes the match.
	PrefixBoost float64

	// TrailingSpaceBoost multiplies scores when the match ends at a
	// word boundary.
	TrailingSpaceBoost float64

	// DensityThreshold is the minimum fraction of adjacent matched
	// word pairs that must be contiguous in the document. Applies to
	// query words longer than three characters.
	DensityThreshold float64

	// SnippetBudget is the target snippet length in characters.
	SnippetBudget int

	// SnippetBeforeRatio is the share of the budget reserved for
	// context before the match.
	SnippetBeforeRatio float64

	// ScoringWorkers sets the scoring pool size. Zero reserves two
	// CPUs for the embedding application and uses the rest.
	ScoringWorkers int

	// PruneLowWater is the fraction of the prune target to shrink
	// below before reclaiming space, so back-to-back prunes are not
	// triggered by the next few saves.
	PruneLowWater float64
}

// DefaultTuning returns the tuned default configuration.
func DefaultTuning() Tuning {
	return Tuning{
		RecallLimit:         2000,
		MaxResults:          5000,
		ShortQueryScanLimit: 20000,
		RecencyBoostMax:     0.1,
		RecencyHalfLife:     7 * 24 * time.Hour,
		PrefixBoost:         2.0,
		TrailingSpaceBoost:  1.2,
		DensityThreshold:    0.25,
		SnippetBudget:       200,
		SnippetBeforeRatio:  0.15,
		ScoringWorkers:      0,
		PruneLowWater:       0.8,
	}
}

// WithDefaults fills zero-valued fields from DefaultTuning.
// Lets config files override only the knobs they name.
func (t Tuning) WithDefaults() Tuning {
	d := DefaultTuning()
	if t.RecallLimit <= 0 {
		t.RecallLimit = d.RecallLimit
	}
	if t.MaxResults <= 0 {
		t.MaxResults = d.MaxResults
	}
	if t.ShortQueryScanLimit <= 0 {
		t.ShortQueryScanLimit = d.ShortQueryScanLimit
	}
	if t.RecencyBoostMax <= 0 {
		t.RecencyBoostMax = d.RecencyBoostMax
	}
	if t.RecencyHalfLife <= 0 {
		t.RecencyHalfLife = d.RecencyHalfLife
	}
	if t.PrefixBoost <= 0 {
		t.PrefixBoost = d.PrefixBoost
	}
	if t.TrailingSpaceBoost <= 0 {
		t.TrailingSpaceBoost = d.TrailingSpaceBoost
	}
	if t.DensityThreshold <= 0 {
		t.DensityThreshold = d.DensityThreshold
	}
	if t.SnippetBudget <= 0 {
		t.SnippetBudget = d.SnippetBudget
	}
	if t.SnippetBeforeRatio <= 0 {
		t.SnippetBeforeRatio = d.SnippetBeforeRatio
	}
	if t.PruneLowWater <= 0 {
		t.PruneLowWater = d.PruneLowWater
	}
	return t
}

// Workers resolves the scoring pool size, reserving two CPUs for the
// caller when unset.
func (t Tuning) Workers() int {
	if t.ScoringWorkers > 0 {
		return t.ScoringWorkers
	}
	n := runtime.NumCPU() - 2
	if n < 1 {
		n = 1
	}
	return n
}
