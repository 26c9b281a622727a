package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/clipvault/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive history picker",
	Long: `Opens the interactive terminal picker.

Type to search as you go; results update live with matched text
highlighted. Select an entry to copy it back to the clipboard.

Controls:
  type       Search
  ↑/↓        Navigate results
  Enter      Copy selection and quit
  Esc        Clear query / quit
  Ctrl-C     Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if storeService == nil {
		return errors.New("store service not configured")
	}

	// Recover with a stack trace; a panicked bubbletea program can
	// otherwise leave the terminal in the alternate screen.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app := tui.NewApp(storeService)
	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen())
	m, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	if a, ok := m.(*tui.App); ok && a.CopiedID() != 0 {
		cmd.Printf("Copied item %d to the clipboard.\n", a.CopiedID())
	}
	return nil
}
