package client

import (
	"context"

	domain "github.com/mkessler/deal-ranker/pkg/types"
)

// SearchRequest is the request body for the search endpoint.
type SearchRequest struct {
	Query       string                 `json:"query"`
	CategoryID  string                 `json:"category_id,omitempty"`
	MaxResults  int                    `json:"max_results,omitempty"`
	Sort        string                 `json:"sort,omitempty"`
	Preferences domain.UserPreferences `json:"preferences,omitempty"`
	Semantic    *bool                  `json:"semantic,omitempty"`
}

// SearchResponse is the response body for the search endpoint.
type SearchResponse struct {
	Items        []RankedItem `json:"items"`
	Total        int          `json:"total"`
	TotalSeen    int          `json:"total_seen"`
	PagesUsed    int          `json:"pages_used"`
	SemanticUsed bool         `json:"semantic_used"`
}

// Search runs an eBay search and returns ranked results.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	var resp SearchResponse
	if err := c.post(ctx, "/api/v1/search", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
