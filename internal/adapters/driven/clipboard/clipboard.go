// Package clipboard adapts the OS clipboard to the driven port.
package clipboard

import (
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/custodia-labs/clipvault/internal/core/ports/driven"
)

// Ensure System implements the interface.
var _ driven.Clipboard = (*System)(nil)

// System is the real system clipboard. The underlying library shells
// out to the platform utility (pbcopy/pbpaste, xclip or xsel, or the
// Windows API), so calls are synchronous and uncancellable.
type System struct{}

// NewSystem returns the system clipboard adapter.
func NewSystem() *System {
	return &System{}
}

// ReadText returns the current clipboard text.
func (s *System) ReadText() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("reading clipboard: %w", err)
	}
	return text, nil
}

// WriteText replaces the clipboard contents with text.
func (s *System) WriteText(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("writing clipboard: %w", err)
	}
	return nil
}
