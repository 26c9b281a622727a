package driven

// Clipboard reads and writes the system clipboard.
// The OS clipboard API is synchronous and carries no cancellation.
type Clipboard interface {
	// ReadText returns the current clipboard text.
	ReadText() (string, error)

	// WriteText replaces the clipboard contents with text.
	WriteText(text string) error
}
