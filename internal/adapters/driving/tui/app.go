// Package tui implements the interactive history picker following the
// Elm architecture.
//
// The picker searches as the user types. Keystrokes arm a short
// debounce timer; when it fires with the input unchanged, a search
// command runs off the Update loop. The engine performs no in-flight
// cancellation, so completions are tagged with the query that produced
// them and dropped when the input has moved on.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/clipvault/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/clipvault/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/clipvault/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/clipvault/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/clipvault/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/clipvault/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/clipvault/internal/core/domain"
	"github.com/custodia-labs/clipvault/internal/core/ports/driving"
)

const (
	// searchDebounce is how long typing must pause before a search
	// fires. The engine answers well under this, so the timer exists
	// only to skip queries the user types through.
	searchDebounce = 100 * time.Millisecond

	// resultLimit caps how many matches one search returns to the
	// picker. The status bar reports the full count.
	resultLimit = 50
)

// App is the picker application. It implements tea.Model.
type App struct {
	// store answers searches and copies selections back to the
	// system clipboard.
	store driving.StoreService

	// ctx bounds the store calls issued from commands.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// keymap holds the picker keybindings.
	keymap *keymap.KeyMap

	// inputField is the query input component.
	inputField *input.QueryInput

	// resultList is the match list component.
	resultList *list.ResultList

	// statusbar shows state and keybinding hints.
	statusbar *status.Bar

	// copiedID is the item copied on exit, zero if none.
	copiedID int64

	// err holds the last search or copy error.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates the first WindowSizeMsg has arrived.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the picker over the given store service.
func NewApp(store driving.StoreService) *App {
	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		store:      store,
		ctx:        context.Background(),
		styles:     s,
		keymap:     km,
		inputField: input.NewQueryInput(s),
		resultList: list.NewResultList(s),
		statusbar:  status.NewBar(s, km),
	}
}

// WithContext sets the context used for store calls.
func (a *App) WithContext(ctx context.Context) *App {
	if ctx != nil {
		a.ctx = ctx
	}
	return a
}

// Init starts the cursor blink and loads the most recent entries so
// the picker is populated before the first keystroke.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("clipvault"),
		a.inputField.Init(),
		a.performSearch(""),
	)
}

// Update handles all application messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.inputField.SetWidth(msg.Width)
		a.resultList.SetDimensions(msg.Width, msg.Height-6)
		a.statusbar.SetWidth(msg.Width)
		a.ready = true
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.DebounceElapsed:
		// A later keystroke re-armed the timer; its tick will drive
		// the search instead.
		if msg.Query != a.inputField.Value() {
			return a, nil
		}
		a.statusbar.SetState(status.StateSearching)
		return a, a.performSearch(msg.Query)

	case messages.SearchCompleted:
		return a.handleSearchCompleted(msg)

	case messages.ItemCopied:
		if msg.Err != nil {
			a.err = msg.Err
			a.statusbar.SetState(status.StateError)
			a.statusbar.SetMessage(msg.Err.Error())
			return a, nil
		}
		a.copiedID = msg.ID
		a.statusbar.SetCopied(msg.ID)
		return a, tea.Quit
	}

	return a, nil
}

// handleKey routes keys: picker bindings first, everything else to the
// query input.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, a.keymap.Quit):
		return a, tea.Quit

	case keymap.Matches(keyStr, a.keymap.Cancel):
		if a.inputField.Value() == "" {
			return a, tea.Quit
		}
		a.inputField.Reset()
		return a, a.armDebounce()

	case keymap.Matches(keyStr, a.keymap.Up):
		a.resultList.MoveUp()
		return a, nil

	case keymap.Matches(keyStr, a.keymap.Down):
		a.resultList.MoveDown()
		return a, nil

	case keymap.Matches(keyStr, a.keymap.Copy):
		if m := a.resultList.SelectedMatch(); m != nil {
			return a, a.copySelected(m.Item.ID)
		}
		return a, nil
	}

	before := a.inputField.Value()
	var cmd tea.Cmd
	a.inputField, cmd = a.inputField.Update(msg)
	if a.inputField.Value() != before {
		return a, tea.Batch(cmd, a.armDebounce())
	}
	return a, cmd
}

// armDebounce schedules a DebounceElapsed tick carrying the input
// value at arming time.
func (a *App) armDebounce() tea.Cmd {
	query := a.inputField.Value()
	return tea.Tick(searchDebounce, func(time.Time) tea.Msg {
		return messages.DebounceElapsed{Query: query}
	})
}

// performSearch runs one search off the Update loop and reports back
// with the query it answered.
func (a *App) performSearch(query string) tea.Cmd {
	return func() tea.Msg {
		resp, err := a.store.Search(a.ctx, query, domain.SearchOptions{Limit: resultLimit})
		return messages.SearchCompleted{Query: query, Response: resp, Err: err}
	}
}

// handleSearchCompleted applies a search answer unless the input has
// changed since the search was issued.
func (a *App) handleSearchCompleted(msg messages.SearchCompleted) (tea.Model, tea.Cmd) {
	if msg.Query != a.inputField.Value() {
		// Superseded while in flight. A fresh search for the current
		// input is already queued behind the debounce.
		return a, nil
	}

	if msg.Err != nil {
		a.err = msg.Err
		a.statusbar.SetState(status.StateError)
		a.statusbar.SetMessage(msg.Err.Error())
		return a, nil
	}

	a.err = nil
	a.resultList.SetMatches(msg.Response.Matches)
	a.statusbar.SetCounts(len(msg.Response.Matches), msg.Response.TotalCount)
	return a, nil
}

// copySelected copies an item back to the system clipboard.
func (a *App) copySelected(id int64) tea.Cmd {
	return func() tea.Msg {
		return messages.ItemCopied{ID: id, Err: a.store.CopyToClipboard(a.ctx, id)}
	}
}

// View renders the picker.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	sections := []string{
		a.inputField.View(),
		"",
		a.resultList.View(),
		"",
		a.statusbar.View(),
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// Query returns the current query text.
func (a *App) Query() string {
	return a.inputField.Value()
}

// Results returns the current matches.
func (a *App) Results() []domain.ItemMatch {
	return a.resultList.Matches()
}

// SelectedIndex returns the selected result index.
func (a *App) SelectedIndex() int {
	return a.resultList.Selected()
}

// CopiedID returns the id of the item copied on exit, zero if the
// picker quit without copying.
func (a *App) CopiedID() int64 {
	return a.copiedID
}

// Err returns the last error.
func (a *App) Err() error {
	return a.err
}

// Ready reports whether the first window size arrived.
func (a *App) Ready() bool {
	return a.ready
}

// Reset clears the query, the results, and the status bar.
func (a *App) Reset() {
	a.inputField.Reset()
	a.resultList.SetMatches(nil)
	a.statusbar.Clear()
	a.err = nil
}
