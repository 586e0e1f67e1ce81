package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mkessler/deal-ranker/internal/ebay"
	"github.com/mkessler/deal-ranker/internal/engine"
	domain "github.com/mkessler/deal-ranker/pkg/types"
)

// ListingCollector is the eBay surface the search handler depends on.
type ListingCollector interface {
	Collect(ctx context.Context, req ebay.SearchRequest, maxItems int) (*ebay.CollectResult, error)
}

// SearchHandler searches eBay and ranks the results in one call.
type SearchHandler struct {
	collector ListingCollector
	ranker    ListingRanker
}

// NewSearchHandler creates a new SearchHandler. The collector may be
// nil when eBay credentials are not configured.
func NewSearchHandler(c ListingCollector, r ListingRanker) *SearchHandler {
	return &SearchHandler{collector: c, ranker: r}
}

// SearchInput is the request body for the search endpoint.
type SearchInput struct {
	Body struct {
		Query       string                 `json:"query" minLength:"1" doc:"eBay search query" example:"thinkpad x1 carbon"`
		CategoryID  string                 `json:"category_id,omitempty" doc:"eBay category ID" example:"177"`
		MaxResults  int                    `json:"max_results,omitempty" minimum:"1" maximum:"500" doc:"Listing cap (default 100)"`
		Sort        string                 `json:"sort,omitempty" doc:"eBay sort order" example:"newlyListed"`
		Preferences domain.UserPreferences `json:"preferences,omitempty" doc:"Buyer preferences, also pushed down as coarse API filters"`
		Semantic    *bool                  `json:"semantic,omitempty" doc:"Enable semantic scoring (default true)"`
	}
}

// SearchOutput is the response body for the search endpoint.
type SearchOutput struct {
	Body struct {
		Items        []RankedItemBody `json:"items" doc:"Ranked listings, best first"`
		Total        int              `json:"total" doc:"Number of ranked items"`
		TotalSeen    int              `json:"total_seen" doc:"Listings fetched from eBay before ranking"`
		PagesUsed    int              `json:"pages_used" doc:"eBay API pages consumed"`
		SemanticUsed bool             `json:"semantic_used" doc:"Whether semantic scoring ran"`
	}
}

// Search fetches listings from eBay and returns them ranked.
func (h *SearchHandler) Search(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	if h.collector == nil {
		return nil, huma.Error503ServiceUnavailable("eBay search is not configured")
	}

	maxResults := input.Body.MaxResults
	if maxResults <= 0 {
		maxResults = 100
	}

	prefs := input.Body.Preferences
	collected, err := h.collector.Collect(ctx, ebay.SearchRequest{
		Query:            input.Body.Query,
		CategoryID:       input.Body.CategoryID,
		Sort:             input.Body.Sort,
		MaxPrice:         prefs.MaxPrice,
		Conditions:       prefs.Conditions,
		FreeShippingOnly: prefs.FreeShippingOnly,
	}, maxResults)
	if err != nil {
		return nil, huma.Error502BadGateway("eBay API error: " + err.Error())
	}

	semantic := true
	if input.Body.Semantic != nil {
		semantic = *input.Body.Semantic
	}

	res, err := h.ranker.Rank(ctx, engine.RankRequest{
		Listings:    collected.Listings,
		Preferences: prefs,
		Query:       input.Body.Query,
		Semantic:    semantic,
	})
	if err != nil {
		return nil, huma.Error500InternalServerError("ranking failed: " + err.Error())
	}

	out := &SearchOutput{}
	out.Body.Items = toItemBodies(res.Items)
	out.Body.Total = res.Total
	out.Body.TotalSeen = collected.TotalSeen
	out.Body.PagesUsed = collected.PagesUsed
	out.Body.SemanticUsed = res.SemanticUsed
	return out, nil
}

// RegisterSearchRoutes registers search endpoints with the Huma API.
func RegisterSearchRoutes(api huma.API, h *SearchHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "search-and-rank",
		Method:      http.MethodPost,
		Path:        "/api/v1/search",
		Summary:     "Search eBay and rank the results",
		Description: "Fetches listings from the eBay Browse API, applying coarse preference " +
			"filters server-side, then ranks the results.",
		Tags:   []string{"search"},
		Errors: []int{http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusInternalServerError},
	}, h.Search)
}
