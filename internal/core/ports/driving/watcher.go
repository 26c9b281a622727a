package driving

import "context"

// WatchService observes the system clipboard and saves each new entry
// through the store façade.
type WatchService interface {
	// Run polls the clipboard until ctx is cancelled. Returns nil on
	// cancellation; any other return is a clipboard failure.
	Run(ctx context.Context) error
}
