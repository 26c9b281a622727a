package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// recentURI is the resource listing the newest history entries.
	recentURI = "clipvault://recent"

	// recentResourceLimit bounds the recent listing.
	recentResourceLimit = 25
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         recentURI,
		Name:        "recent",
		Description: "Most recent clipboard history entries, newest first",
		MIMEType:    "application/json",
	}, s.handleRecentResource)
}

// recentEntry is one row of the recent resource.
type recentEntry struct {
	ID        int64  `json:"id"`
	Kind      string `json:"kind"`
	Title     string `json:"title"`
	Timestamp string `json:"timestamp"`
	SourceApp string `json:"source_app,omitempty"`
}

// handleRecentResource returns the newest history entries.
func (s *Server) handleRecentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	page, err := s.store.FetchPage(ctx, nil, recentResourceLimit)
	if err != nil {
		return nil, fmt.Errorf("fetching recent entries: %w", err)
	}

	entries := make([]recentEntry, len(page.Items))
	for i, it := range page.Items {
		entries[i] = recentEntry{
			ID:        it.ID,
			Kind:      it.Kind.String(),
			Title:     it.DisplayName(),
			Timestamp: it.Timestamp.UTC().Format(time.RFC3339),
			SourceApp: it.SourceApp,
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling recent entries: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
