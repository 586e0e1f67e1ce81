package ebay

import (
	"context"
	"fmt"
	"log/slog"

	domain "github.com/mkessler/deal-ranker/pkg/types"
)

const (
	defaultPageSize = 100
	defaultMaxPages = 5
)

// Collector pages through eBay search results and accumulates domain
// listings up to a cap, so one ranking request can cover more than a
// single API page without unbounded quota spend.
type Collector struct {
	client   Searcher
	log      *slog.Logger
	pageSize int
	maxPages int
}

// CollectorOption configures the Collector.
type CollectorOption func(*Collector)

// WithPageSize overrides the default page size.
func WithPageSize(size int) CollectorOption {
	return func(c *Collector) {
		c.pageSize = size
	}
}

// WithMaxPages overrides the default max pages.
func WithMaxPages(n int) CollectorOption {
	return func(c *Collector) {
		c.maxPages = n
	}
}

// WithCollectorLogger sets the logger.
func WithCollectorLogger(log *slog.Logger) CollectorOption {
	return func(c *Collector) {
		c.log = log
	}
}

// NewCollector creates a new Collector.
func NewCollector(client Searcher, opts ...CollectorOption) *Collector {
	c := &Collector{
		client:   client,
		log:      slog.Default(),
		pageSize: defaultPageSize,
		maxPages: defaultMaxPages,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CollectResult holds the outcome of a paginated collection.
type CollectResult struct {
	Listings  []domain.Listing
	TotalSeen int
	PagesUsed int
	StoppedAt string // "max_items", "max_pages", "no_more_results"
}

// Collect fetches listings for a search request, stopping when
// maxItems listings are gathered, the page cap is hit, or eBay runs
// out of results. maxItems <= 0 means no item cap.
func (c *Collector) Collect(
	ctx context.Context,
	req SearchRequest,
	maxItems int,
) (*CollectResult, error) {
	req.Limit = c.pageSize
	if maxItems > 0 && maxItems < c.pageSize {
		req.Limit = maxItems
	}

	result := &CollectResult{}

	for page := range c.maxPages {
		req.Offset = page * c.pageSize

		resp, err := c.client.Search(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("searching page %d: %w", page, err)
		}

		result.PagesUsed++
		result.TotalSeen += len(resp.Items)

		if len(resp.Items) == 0 {
			result.StoppedAt = "no_more_results"
			return result, nil
		}

		result.Listings = append(result.Listings, ToListings(resp.Items)...)

		if maxItems > 0 && len(result.Listings) >= maxItems {
			result.Listings = result.Listings[:maxItems]
			result.StoppedAt = "max_items"
			return result, nil
		}

		if !resp.HasMore {
			result.StoppedAt = "no_more_results"
			return result, nil
		}
	}

	c.log.Debug("collection stopped at page cap",
		"pages", result.PagesUsed,
		"listings", len(result.Listings),
	)
	result.StoppedAt = "max_pages"
	return result, nil
}
