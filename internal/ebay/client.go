// Package ebay provides an eBay Browse API client abstracted behind
// interfaces for testability. It is the listing source for ranking:
// search, convert to domain listings, and hand off to the engine.
package ebay

import (
	"context"
)

// SearchRequest defines the parameters for an eBay search. The coarse
// filter fields are pushed down to the API to cut result volume; the
// preference scorer still applies the precise versions locally.
type SearchRequest struct {
	Query      string
	CategoryID string
	Limit      int
	Offset     int
	Sort       string

	MaxPrice         *float64
	Conditions       []string
	FreeShippingOnly bool
}

// SearchResponse holds one page of eBay search results.
type SearchResponse struct {
	Items   []ItemSummary
	Total   int
	Offset  int
	Limit   int
	HasMore bool
}

// Searcher is the interface the rest of the system uses to query eBay.
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// TokenProvider defines the interface for obtaining OAuth2 tokens.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}
