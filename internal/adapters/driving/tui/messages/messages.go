// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and command results that flow through the
// Elm architecture.
package messages

import (
	"github.com/custodia-labs/clipvault/internal/core/domain"
)

// DebounceElapsed fires after the typing pause. Query is the input
// value captured when the timer was armed; if the input has changed
// since, the tick is obsolete and a newer one is already pending.
type DebounceElapsed struct {
	Query string
}

// SearchCompleted carries one search's answer back to the model.
// Query identifies which input state produced it: the engine never
// cancels in-flight work, so answers for superseded queries arrive
// late and must be dropped by comparing Query against the current
// input value.
type SearchCompleted struct {
	Query    string
	Response domain.SearchResponse
	Err      error
}

// ItemCopied reports the outcome of copying a selection back to the
// system clipboard.
type ItemCopied struct {
	ID  int64
	Err error
}
