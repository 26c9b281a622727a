// Package list provides the result list component for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	humanize "github.com/dustin/go-humanize"

	"github.com/custodia-labs/clipvault/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/clipvault/internal/core/domain"
)

// ResultList displays search matches in a navigable list. Each match
// renders as a title row plus a snippet row with the matched regions
// highlighted.
type ResultList struct {
	matches  []domain.ItemMatch
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates a new result list component.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ResultList{
		matches:  nil,
		selected: 0,
		styles:   s,
		width:    80,
		height:   20,
	}
}

// Init initialises the result list.
func (r *ResultList) Init() tea.Cmd {
	return nil
}

// Update handles list messages. Navigation comes in through the app's
// keymap, so the list itself is passive.
func (r *ResultList) Update(_ tea.Msg) (*ResultList, tea.Cmd) {
	return r, nil
}

// View renders the result list.
func (r *ResultList) View() string {
	if len(r.matches) == 0 {
		return r.styles.Muted.Render("No matches")
	}

	// Each match takes two lines.
	visibleCount := r.height / 2
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if r.selected >= visibleCount {
		start = r.selected - visibleCount + 1
	}
	end := start + visibleCount
	if end > len(r.matches) {
		end = len(r.matches)
	}

	lines := make([]string, 0, (end-start)*2)
	for i := start; i < end; i++ {
		lines = append(lines, r.renderMatch(i, &r.matches[i]))
	}

	return strings.Join(lines, "\n")
}

// renderMatch formats a single match as a title row and a snippet row.
func (r *ResultList) renderMatch(index int, m *domain.ItemMatch) string {
	indicator := "  "
	base := r.styles.Normal
	match := r.styles.Highlight
	if index == r.selected {
		indicator = "> "
		base = r.styles.Selected
		match = r.styles.SelectedHighlight
	}

	badge := r.styles.Badge.Render(fmt.Sprintf("%-5s", m.Item.Kind))
	when := r.styles.Timestamp.Render(humanize.Time(m.Item.Timestamp))

	titleWidth := r.width - 30
	if titleWidth < 10 {
		titleWidth = 10
	}
	title := truncate(flatten(m.Item.DisplayName()), titleWidth)

	var titleCell string
	if m.Item.Kind == domain.KindColor {
		titleCell = r.styles.Swatch(rgbHex(m.Item.Color)).Render(" " + title + " ")
	} else {
		titleCell = base.Render(fmt.Sprintf("%-*s", titleWidth, title))
	}

	titleLine := lipgloss.JoinHorizontal(lipgloss.Top, indicator, badge, " ", titleCell, "  ", when)

	snippet := m.Match.Snippet
	if snippet == "" || snippet == flatten(m.Item.DisplayName()) {
		return titleLine + "\n"
	}

	snippetWidth := r.width - 8
	if snippetWidth < 20 {
		snippetWidth = 20
	}
	body := highlightSnippet(truncate(snippet, snippetWidth), m.Match.Highlights, r.styles.Muted, match)

	return titleLine + "\n" + "        " + body
}

// highlightSnippet renders snippet text with the matched ranges in the
// match style. Range offsets are rune indices into the snippet;
// truncation is tolerated by clamping ranges to the remaining text.
func highlightSnippet(text string, ranges []domain.HighlightRange, base, match lipgloss.Style) string {
	if len(ranges) == 0 {
		return base.Render(text)
	}

	runes := []rune(text)
	var b strings.Builder
	pos := 0
	for _, hr := range ranges {
		start, end := hr.Start, hr.End
		if start < 0 {
			start = 0
		}
		if end > len(runes) {
			end = len(runes)
		}
		if start >= end || start < pos {
			continue
		}
		if pos < start {
			b.WriteString(base.Render(string(runes[pos:start])))
		}
		b.WriteString(match.Render(string(runes[start:end])))
		pos = end
	}
	if pos < len(runes) {
		b.WriteString(base.Render(string(runes[pos:])))
	}
	return b.String()
}

// flatten collapses whitespace runs so multiline content fits one row.
// Snippets arrive already flattened; this is for raw display names.
func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s to at most n runes, marking the cut with an ellipsis.
// It must not reflow the text: snippet highlight offsets are computed
// against the input as-is.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n < 1 {
		n = 1
	}
	return string(runes[:n-1]) + "…"
}

// rgbHex formats the opaque channels for terminal rendering.
func rgbHex(c domain.ColorRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R(), c.G(), c.B())
}

// SetMatches replaces the list contents and resets the selection.
func (r *ResultList) SetMatches(matches []domain.ItemMatch) {
	r.matches = matches
	r.selected = 0
}

// Matches returns the current matches.
func (r *ResultList) Matches() []domain.ItemMatch {
	return r.matches
}

// Selected returns the index of the selected match.
func (r *ResultList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index.
func (r *ResultList) SetSelected(index int) {
	if index >= 0 && index < len(r.matches) {
		r.selected = index
	}
}

// SelectedMatch returns the currently selected match, or nil if none.
func (r *ResultList) SelectedMatch() *domain.ItemMatch {
	if len(r.matches) == 0 || r.selected < 0 || r.selected >= len(r.matches) {
		return nil
	}
	return &r.matches[r.selected]
}

// MoveUp moves the selection up.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves the selection down.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.matches)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Width returns the current width.
func (r *ResultList) Width() int {
	return r.width
}

// Height returns the current height.
func (r *ResultList) Height() int {
	return r.height
}

// Count returns the number of matches.
func (r *ResultList) Count() int {
	return len(r.matches)
}

// IsEmpty returns whether the list is empty.
func (r *ResultList) IsEmpty() bool {
	return len(r.matches) == 0
}
