package client

import (
	"context"

	domain "github.com/mkessler/deal-ranker/pkg/types"
)

// RankedItem is one ranked listing as returned by the API.
type RankedItem struct {
	Listing       domain.Listing     `json:"listing"`
	Preference    domain.SubScoreSet `json:"preference"`
	Deal          domain.DealScore   `json:"deal"`
	SemanticScore *float64           `json:"semantic_score,omitempty"`
	FinalScore    float64            `json:"final_score"`
	Explanation   domain.Explanation `json:"explanation"`
}

// RankRequest is the request body for the rank endpoint.
type RankRequest struct {
	Listings    []domain.Listing       `json:"listings"`
	Preferences domain.UserPreferences `json:"preferences,omitempty"`
	Query       string                 `json:"query,omitempty"`
	Semantic    *bool                  `json:"semantic,omitempty"`
	Mode        string                 `json:"mode,omitempty"`
}

// RankResponse is the response body for the rank endpoint.
type RankResponse struct {
	Items        []RankedItem `json:"items"`
	Total        int          `json:"total"`
	SemanticUsed bool         `json:"semantic_used"`
}

// Rank submits listings for ranking.
func (c *Client) Rank(ctx context.Context, req RankRequest) (*RankResponse, error) {
	var resp RankResponse
	if err := c.post(ctx, "/api/v1/rank", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
