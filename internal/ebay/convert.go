package ebay

import (
	"strconv"
	"strings"

	domain "github.com/mkessler/deal-ranker/pkg/types"
)

// ToListings converts eBay API item summaries into domain listings.
func ToListings(items []ItemSummary) []domain.Listing {
	listings := make([]domain.Listing, 0, len(items))
	for i := range items {
		listings = append(listings, toListing(&items[i]))
	}
	return listings
}

func toListing(item *ItemSummary) domain.Listing {
	l := domain.Listing{
		ID:          item.ItemID,
		Title:       item.Title,
		Description: item.ShortDescription,
		Currency:    item.Price.Currency,
		Condition:   item.Condition,
		ItemURL:     item.ItemWebURL,
	}

	if p, err := strconv.ParseFloat(item.Price.Value, 64); err == nil {
		l.Price = p
	}

	if item.Image != nil {
		l.ImageURL = item.Image.ImageURL
	}

	if item.Seller != nil {
		l.Seller.Username = item.Seller.Username
		l.Seller.Feedback = item.Seller.FeedbackScore
		if pct, err := strconv.ParseFloat(
			item.Seller.FeedbackPercentage,
			64,
		); err == nil {
			l.Seller.FeedbackPct = pct
		}
	}

	for _, opt := range item.ShippingOptions {
		if opt.ShippingCost == nil {
			continue
		}
		cost, err := strconv.ParseFloat(opt.ShippingCost.Value, 64)
		if err != nil {
			continue
		}
		l.Shipping = append(l.Shipping, domain.ShippingOption{
			Cost: cost,
			Type: opt.ShippingCostType,
		})
	}

	if item.ItemLocation != nil {
		l.Location = formatLocation(item.ItemLocation)
	}

	if len(item.Categories) > 0 {
		l.Category = strings.ToLower(item.Categories[0].CategoryName)
	}

	return l
}

func formatLocation(loc *ItemLocation) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{loc.City, loc.StateOrProvince, loc.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
