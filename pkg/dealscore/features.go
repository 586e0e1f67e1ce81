package dealscore

import (
	"math"
	"regexp"
	"strings"

	domain "github.com/mkessler/deal-ranker/pkg/types"
)

// Placeholder feature values used until real listing-age and bid data
// are available from the listing source.
const (
	freshnessPlaceholder   = 0.8
	bidActivityPlaceholder = 0.6
)

// unknownCategoryMarkup estimates the market average for categories
// missing from the baseline table: the listing's own price plus 20%.
const unknownCategoryMarkup = 1.2

// conditionQuality maps normalized condition strings to a [0,1] quality
// estimate. Anything unrecognized gets 0.5.
var conditionQuality = map[string]float64{
	"NEW":         1.0,
	"LIKE_NEW":    0.9,
	"NEW_OTHER":   0.85,
	"REFURBISHED": 0.8,
	"VERY_GOOD":   0.75,
	"GOOD":        0.65,
	"USED":        0.6,
	"ACCEPTABLE":  0.45,
	"FOR_PARTS":   0.2,
}

var (
	brandModelPattern = regexp.MustCompile(`\b[A-Z][a-z]+ [A-Z0-9][A-Za-z0-9-]*\b`)
	sizeSpecPattern   = regexp.MustCompile(`(?i)\b\d+(\.\d+)?\s?(gb|tb|mb|ghz|mhz|mm|cm|in|inch|ml|oz|lb|kg|w|mah|mp)\b`)
	hypeWords         = []string{"wow", "l@@k", "look!!", "must see", "amazing!!", "best deal"}
	conditionWords    = []string{"new", "used", "refurbished", "sealed", "mint", "open box"}
)

// ExtractFeatures derives the numeric model inputs for one listing.
// marketAverage must be positive; callers obtain it from the model's
// category table.
func ExtractFeatures(l *domain.Listing, marketAverage float64) domain.DealFeatures {
	return domain.DealFeatures{
		PriceVsAverage: priceVsAverage(l.Price, marketAverage),
		SellerRating:   clamp01(l.Seller.FeedbackPct / 100),
		ShippingRatio:  shippingRatio(l),
		Condition:      conditionFeature(l.Condition),
		TitleQuality:   titleQuality(l.Title),
		Freshness:      freshnessPlaceholder,
		BidActivity:    bidActivityPlaceholder,
	}
}

// priceVsAverage squashes the relative price deviation into [-1,1].
// Negative values mean cheaper than the category norm.
func priceVsAverage(price, marketAverage float64) float64 {
	if marketAverage <= 0 {
		return 0
	}
	return math.Tanh((price/marketAverage - 1) * 2)
}

// shippingRatio is 0 for confirmed-free shipping, 0.5 when shipping is
// unknown, otherwise the cheapest shipping cost relative to the price.
func shippingRatio(l *domain.Listing) float64 {
	if l.FreeShipping() {
		return 0
	}
	cost, ok := l.CheapestShipping()
	if !ok || l.Price <= 0 {
		return 0.5
	}
	return math.Min(1, cost/l.Price)
}

func conditionFeature(condition string) float64 {
	key := strings.ToUpper(strings.TrimSpace(condition))
	key = strings.ReplaceAll(key, " ", "_")
	if q, ok := conditionQuality[key]; ok {
		return q
	}
	return 0.5
}

// titleQuality estimates how informative a listing title is. Starts at
// a 0.5 base and adjusts for length, brand/model tokens, condition and
// spec details, and hype noise; clamped to [0,1].
func titleQuality(title string) float64 {
	q := 0.5
	n := len(title)

	switch {
	case n > 30 && n < 120:
		q += 0.2
	case n < 20:
		q -= 0.2
	}

	if brandModelPattern.MatchString(title) {
		q += 0.15
	}

	lower := strings.ToLower(title)
	for _, w := range conditionWords {
		if strings.Contains(lower, w) {
			q += 0.1
			break
		}
	}

	if sizeSpecPattern.MatchString(title) {
		q += 0.1
	}

	if hasHype(lower) {
		q -= 0.15
	}

	if strings.Contains(title, "???") {
		q -= 0.1
	}

	return clamp01(q)
}

func hasHype(lowerTitle string) bool {
	if strings.Contains(lowerTitle, "!!!") {
		return true
	}
	for _, w := range hypeWords {
		if strings.Contains(lowerTitle, w) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
