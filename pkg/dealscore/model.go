// Package dealscore estimates deal quality for marketplace listings
// with a fixed-weight logistic model over derived listing features.
package dealscore

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync/atomic"

	domain "github.com/mkessler/deal-ranker/pkg/types"
)

// ModelWeights defines the linear model coefficients. Negative weights
// mean the feature hurts deal quality as it grows.
type ModelWeights struct {
	PriceVsAverage float64
	SellerRating   float64
	ShippingRatio  float64
	Condition      float64
	TitleQuality   float64
	Freshness      float64
	BidActivity    float64
	Bias           float64
}

// DefaultModelWeights returns the fixed logistic model coefficients.
func DefaultModelWeights() ModelWeights {
	return ModelWeights{
		PriceVsAverage: -0.35,
		SellerRating:   0.25,
		ShippingRatio:  -0.15,
		Condition:      0.20,
		TitleQuality:   0.10,
		Freshness:      0.05,
		BidActivity:    0.05,
		Bias:           0.15,
	}
}

// Recommendation thresholds over the overall score.
const (
	excellentThreshold = 80
	goodThreshold      = 65
	fairThreshold      = 40
)

// DefaultCategory is the market-average table key used when a listing
// carries no category.
const DefaultCategory = "general"

// DefaultMarketAverages returns the built-in per-category market average
// price table (USD).
func DefaultMarketAverages() map[string]float64 {
	return map[string]float64{
		"general":        100,
		"electronics":    150,
		"computers":      400,
		"phones":         350,
		"cameras":        280,
		"audio":          120,
		"video_games":    60,
		"collectibles":   80,
		"clothing":       45,
		"jewelry":        150,
		"home":           90,
		"toys":           35,
		"sporting_goods": 75,
		"automotive":     125,
	}
}

// Model scores listings for deal quality. The category market-average
// table is replaced wholesale via SetMarketAverages; it is never
// mutated in place, so scoring passes always read a consistent table.
type Model struct {
	weights  ModelWeights
	averages atomic.Pointer[map[string]float64]
	log      *slog.Logger
}

// ModelOption configures the Model.
type ModelOption func(*Model)

// WithModelWeights overrides the default model coefficients.
func WithModelWeights(w ModelWeights) ModelOption {
	return func(m *Model) {
		m.weights = w
	}
}

// WithMarketAverages seeds the category market-average table.
func WithMarketAverages(averages map[string]float64) ModelOption {
	return func(m *Model) {
		m.storeAverages(averages)
	}
}

// WithLogger sets the logger for internal fault reporting.
func WithLogger(log *slog.Logger) ModelOption {
	return func(m *Model) {
		m.log = log
	}
}

// NewModel creates a deal quality model with the default weights and
// market-average table unless overridden by options.
func NewModel(opts ...ModelOption) *Model {
	m := &Model{
		weights: DefaultModelWeights(),
		log:     slog.Default(),
	}
	m.storeAverages(DefaultMarketAverages())
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Model) storeAverages(averages map[string]float64) {
	copied := make(map[string]float64, len(averages))
	for k, v := range averages {
		copied[normalizeCategory(k)] = v
	}
	m.averages.Store(&copied)
}

// SetMarketAverages swaps the whole category table. Safe to call while
// scoring passes are in progress.
func (m *Model) SetMarketAverages(averages map[string]float64) {
	m.storeAverages(averages)
}

// MarketAverages returns a copy of the current category table.
func (m *Model) MarketAverages() map[string]float64 {
	table := *m.averages.Load()
	out := make(map[string]float64, len(table))
	for k, v := range table {
		out[k] = v
	}
	return out
}

// MarketAverage returns the market average for a category, falling back
// to the listing's own price plus a fixed markup when the category is
// unknown. An empty category means DefaultCategory.
func (m *Model) MarketAverage(category string, currentPrice float64) float64 {
	if category == "" {
		category = DefaultCategory
	}
	table := *m.averages.Load()
	if avg, ok := table[normalizeCategory(category)]; ok && avg > 0 {
		return avg
	}
	return currentPrice * unknownCategoryMarkup
}

// Score computes the deal score for one listing. It never fails: any
// internal fault is logged and replaced by a neutral fallback score.
func (m *Model) Score(l *domain.Listing, category string) (ds domain.DealScore) {
	defer func() {
		if r := recover(); r != nil {
			id := ""
			if l != nil {
				id = l.ID
			}
			m.log.Error("deal scoring fault, using neutral fallback",
				"listing_id", id,
				"error", fmt.Sprint(r),
			)
			ds = NeutralDealScore()
		}
	}()

	if category == "" {
		category = l.Category
	}

	features := ExtractFeatures(l, m.MarketAverage(category, l.Price))
	overall := round2(logistic(m.linear(features)) * 100)

	return domain.DealScore{
		Overall:        overall,
		Confidence:     confidence(features),
		Breakdown:      breakdown(features),
		Recommendation: Recommend(overall),
	}
}

// ScoreAll scores each listing independently. A fault in one listing
// degrades only that listing to the neutral fallback.
func (m *Model) ScoreAll(listings []domain.Listing, category string) []domain.DealScore {
	scores := make([]domain.DealScore, len(listings))
	for i := range listings {
		scores[i] = m.Score(&listings[i], category)
	}
	return scores
}

// NeutralDealScore is the fallback when scoring faults internally:
// neutral everywhere, minimum confidence.
func NeutralDealScore() domain.DealScore {
	return domain.DealScore{
		Overall:    domain.NeutralScore,
		Confidence: 0.1,
		Breakdown: domain.DealBreakdown{
			Price:        domain.NeutralScore,
			Seller:       domain.NeutralScore,
			Shipping:     domain.NeutralScore,
			Condition:    domain.NeutralScore,
			TitleQuality: domain.NeutralScore,
			Freshness:    domain.NeutralScore,
		},
		Recommendation: RecommendFairDefault,
	}
}

// RecommendFairDefault is the recommendation carried by the neutral
// fallback score.
const RecommendFairDefault = domain.RecommendFair

// Recommend buckets an overall score into a recommendation.
func Recommend(overall float64) domain.Recommendation {
	switch {
	case overall >= excellentThreshold:
		return domain.RecommendExcellent
	case overall >= goodThreshold:
		return domain.RecommendGood
	case overall >= fairThreshold:
		return domain.RecommendFair
	default:
		return domain.RecommendPoor
	}
}

func (m *Model) linear(f domain.DealFeatures) float64 {
	w := m.weights
	return f.PriceVsAverage*w.PriceVsAverage +
		f.SellerRating*w.SellerRating +
		f.ShippingRatio*w.ShippingRatio +
		f.Condition*w.Condition +
		f.TitleQuality*w.TitleQuality +
		f.Freshness*w.Freshness +
		f.BidActivity*w.BidActivity +
		w.Bias
}

func logistic(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// confidence starts at 0.5 and moves with how much evidence the
// features carry, clamped to [0.1, 1.0].
func confidence(f domain.DealFeatures) float64 {
	c := 0.5
	if f.SellerRating > 0.95 {
		c += 0.2
	}
	if math.Abs(f.PriceVsAverage) > 0.3 {
		c += 0.15
	}
	if f.TitleQuality > 0.8 {
		c += 0.1
	}
	if f.SellerRating < 0.9 {
		c -= 0.15
	}
	return math.Max(0.1, math.Min(1.0, c))
}

// breakdown maps each feature to a 0-100 factor score. Price and
// shipping invert so that cheaper is better.
func breakdown(f domain.DealFeatures) domain.DealBreakdown {
	return domain.DealBreakdown{
		Price:        round2((1 - (f.PriceVsAverage+1)/2) * 100),
		Seller:       round2(f.SellerRating * 100),
		Shipping:     round2((1 - f.ShippingRatio) * 100),
		Condition:    round2(f.Condition * 100),
		TitleQuality: round2(f.TitleQuality * 100),
		Freshness:    round2(f.Freshness * 100),
	}
}

func normalizeCategory(category string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(category)), " ", "_")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
