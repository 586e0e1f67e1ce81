package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mkessler/deal-ranker/internal/embed"
	"github.com/mkessler/deal-ranker/internal/engine"
	domain "github.com/mkessler/deal-ranker/pkg/types"
)

// ListingRanker is the engine surface the rank handlers depend on.
type ListingRanker interface {
	Rank(ctx context.Context, req engine.RankRequest) (*engine.RankResult, error)
	RankByPreference(listings []domain.Listing, prefs domain.UserPreferences) *engine.RankResult
}

// RankHandler handles ranking requests over caller-supplied listings.
type RankHandler struct {
	ranker ListingRanker
}

// NewRankHandler creates a new RankHandler.
func NewRankHandler(r ListingRanker) *RankHandler {
	return &RankHandler{ranker: r}
}

// RankedItemBody is a RankedItem with the semantic score surfaced as a
// nullable field: null means the signal was neutral or unavailable.
type RankedItemBody struct {
	domain.RankedItem
	SemanticScore *float64 `json:"semantic_score,omitempty" doc:"Semantic similarity score (0-100), absent when not computed"`
}

func toItemBodies(items []domain.RankedItem) []RankedItemBody {
	out := make([]RankedItemBody, len(items))
	for i := range items {
		out[i] = RankedItemBody{
			RankedItem:    items[i],
			SemanticScore: items[i].SemanticValue(),
		}
	}
	return out
}

// RankInput is the request body for the rank endpoint.
type RankInput struct {
	Body struct {
		Listings    []domain.Listing       `json:"listings" minItems:"1" doc:"Listings to rank"`
		Preferences domain.UserPreferences `json:"preferences,omitempty" doc:"Buyer preferences"`
		Query       string                 `json:"query,omitempty" doc:"Search intent for semantic scoring" example:"mechanical keyboard"`
		Semantic    *bool                  `json:"semantic,omitempty" doc:"Enable semantic scoring (default true)"`
		Mode        string                 `json:"mode,omitempty" enum:"fused,preference" doc:"Ranking mode (default fused)"`
	}
}

// RankOutput is the response body for the rank endpoint.
type RankOutput struct {
	Body struct {
		Items        []RankedItemBody `json:"items" doc:"Listings in descending final-score order"`
		Total        int              `json:"total" doc:"Number of ranked items"`
		SemanticUsed bool             `json:"semantic_used" doc:"Whether semantic scoring ran"`
	}
}

// Rank scores and orders the supplied listings.
func (h *RankHandler) Rank(ctx context.Context, input *RankInput) (*RankOutput, error) {
	out := &RankOutput{}

	if input.Body.Mode == "preference" {
		res := h.ranker.RankByPreference(input.Body.Listings, input.Body.Preferences)
		out.Body.Items = toItemBodies(res.Items)
		out.Body.Total = res.Total
		return out, nil
	}

	semantic := true
	if input.Body.Semantic != nil {
		semantic = *input.Body.Semantic
	}

	res, err := h.ranker.Rank(ctx, engine.RankRequest{
		Listings:    input.Body.Listings,
		Preferences: input.Body.Preferences,
		Query:       input.Body.Query,
		Semantic:    semantic,
	})
	if err != nil {
		if errors.Is(err, embed.ErrDimensionMismatch) {
			return nil, huma.Error500InternalServerError(
				"embedding dimension mismatch, check the embedding model configuration",
			)
		}
		return nil, huma.Error500InternalServerError("ranking failed: " + err.Error())
	}

	out.Body.Items = toItemBodies(res.Items)
	out.Body.Total = res.Total
	out.Body.SemanticUsed = res.SemanticUsed
	return out, nil
}

// RegisterRankRoutes registers ranking endpoints with the Huma API.
func RegisterRankRoutes(api huma.API, h *RankHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "rank-listings",
		Method:      http.MethodPost,
		Path:        "/api/v1/rank",
		Summary:     "Rank listings",
		Description: "Scores the supplied listings against buyer preferences, deal quality, " +
			"and optional semantic similarity to a query, returning them best-first.",
		Tags:   []string{"ranking"},
		Errors: []int{http.StatusInternalServerError},
	}, h.Rank)
}
