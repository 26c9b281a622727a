package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/clipvault/internal/core/domain"
)

// defaultSearchLimit caps tool results when the caller passes none.
const defaultSearchLimit = 10

// SearchInput is the input schema for the search_history tool.
type SearchInput struct {
	Query string   `json:"query" jsonschema:"the text to search the clipboard history for; empty returns the most recent entries"`
	Limit int      `json:"limit,omitempty" jsonschema:"maximum number of matches to return (default 10)"`
	Kinds []string `json:"kinds,omitempty" jsonschema:"restrict matches to these content kinds: text, color, link, email, phone, image, file"`
}

// SearchOutput is the output schema for the search_history tool.
type SearchOutput struct {
	Matches    []MatchOutput `json:"matches"`
	TotalCount int           `json:"total_count"`
}

// MatchOutput is one ranked match.
type MatchOutput struct {
	ID         int64    `json:"id"`
	Kind       string   `json:"kind"`
	Title      string   `json:"title"`
	Snippet    string   `json:"snippet,omitempty"`
	Highlights []string `json:"highlights,omitempty"`
	LineNumber int      `json:"line_number,omitempty"`
	Timestamp  string   `json:"timestamp"`
	SourceApp  string   `json:"source_app,omitempty"`
}

// GetItemInput is the input schema for the get_item tool.
type GetItemInput struct {
	ID int64 `json:"id" jsonschema:"the item id, as returned by search_history"`
}

// GetItemOutput is the output schema for the get_item tool.
type GetItemOutput struct {
	ID               int64        `json:"id"`
	Kind             string       `json:"kind"`
	Content          string       `json:"content"`
	Timestamp        string       `json:"timestamp"`
	SourceApp        string       `json:"source_app,omitempty"`
	Color            string       `json:"color,omitempty"`
	LinkState        string       `json:"link_state,omitempty"`
	LinkTitle        string       `json:"link_title,omitempty"`
	LinkDescription  string       `json:"link_description,omitempty"`
	ImageDescription string       `json:"image_description,omitempty"`
	ImageBytes       int          `json:"image_bytes,omitempty"`
	Files            []FileOutput `json:"files,omitempty"`
}

// FileOutput describes one attachment of a file item.
type FileOutput struct {
	Path      string `json:"path"`
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
	Status    string `json:"status"`
	IsPrimary bool   `json:"is_primary"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_history",
		Description: "Search the clipboard history. Matches are ranked by relevance blended with recency.",
	}, s.handleSearchHistory)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_item",
		Description: "Fetch one clipboard history item with its full payload details.",
	}, s.handleGetItem)
}

// handleSearchHistory handles the search_history tool invocation.
func (s *Server) handleSearchHistory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	kinds, err := toKinds(input.Kinds)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	resp, err := s.store.Search(ctx, input.Query, domain.SearchOptions{Limit: limit, Kinds: kinds})
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Matches:    make([]MatchOutput, len(resp.Matches)),
		TotalCount: resp.TotalCount,
	}

	for i := range resp.Matches {
		m := &resp.Matches[i]
		output.Matches[i] = MatchOutput{
			ID:         m.Item.ID,
			Kind:       m.Item.Kind.String(),
			Title:      m.Item.DisplayName(),
			Snippet:    m.Match.Snippet,
			Highlights: highlightTexts(m.Match.Snippet, m.Match.Highlights),
			LineNumber: m.Match.LineNumber,
			Timestamp:  m.Item.Timestamp.UTC().Format(time.RFC3339),
			SourceApp:  m.Item.SourceApp,
		}
	}

	return nil, output, nil
}

// handleGetItem handles the get_item tool invocation.
func (s *Server) handleGetItem(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetItemInput,
) (*mcp.CallToolResult, GetItemOutput, error) {
	item, err := s.store.Get(ctx, input.ID)
	if err != nil {
		return nil, GetItemOutput{}, fmt.Errorf("fetching item %d: %w", input.ID, err)
	}

	output := GetItemOutput{
		ID:        item.ID,
		Kind:      item.Kind.String(),
		Content:   item.Content,
		Timestamp: item.Timestamp.UTC().Format(time.RFC3339),
		SourceApp: item.SourceApp,
	}

	switch item.Kind {
	case domain.KindColor:
		output.Color = item.Color.Hex()
	case domain.KindLink:
		if item.Link != nil {
			output.LinkState = string(item.Link.State)
			output.LinkTitle = item.Link.Title
			output.LinkDescription = item.Link.Description
		}
	case domain.KindImage:
		if item.Image != nil {
			output.ImageDescription = item.Image.Description
			output.ImageBytes = len(item.Image.Data)
		}
	case domain.KindFile:
		output.Files = make([]FileOutput, len(item.Files))
		for i, f := range item.Files {
			output.Files[i] = FileOutput{
				Path:      f.Path,
				Filename:  f.Filename,
				SizeBytes: f.SizeBytes,
				Status:    f.Status.String(),
				IsPrimary: f.IsPrimary,
			}
		}
	}

	return nil, output, nil
}

// toKinds parses the kind filter, rejecting unknown kinds.
func toKinds(names []string) ([]domain.ContentKind, error) {
	if len(names) == 0 {
		return nil, nil
	}
	kinds := make([]domain.ContentKind, 0, len(names))
	for _, name := range names {
		k := domain.ContentKind(strings.ToLower(strings.TrimSpace(name)))
		if !k.IsValid() {
			return nil, fmt.Errorf("unknown content kind %q", name)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// highlightTexts extracts the matched substrings from the snippet.
// Range offsets are rune indices.
func highlightTexts(snippet string, ranges []domain.HighlightRange) []string {
	if len(ranges) == 0 {
		return nil
	}
	runes := []rune(snippet)
	out := make([]string, 0, len(ranges))
	for _, r := range ranges {
		start, end := r.Start, r.End
		if start < 0 {
			start = 0
		}
		if end > len(runes) {
			end = len(runes)
		}
		if start >= end {
			continue
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}
