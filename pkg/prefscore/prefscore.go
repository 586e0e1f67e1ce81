// Package prefscore computes rule-based preference match scores for
// marketplace listings. Scoring is a pure function of one listing and
// the user's stated preferences: it never fails and never blocks.
package prefscore

import (
	"math"
	"strings"

	domain "github.com/mkessler/deal-ranker/pkg/types"
)

// Weights defines the relative importance of each preference sub-score.
type Weights struct {
	Price     float64
	Condition float64
	Seller    float64
	Shipping  float64
	Keyword   float64
}

// DefaultWeights returns the fixed composite weights. They sum to 1.0.
func DefaultWeights() Weights {
	return Weights{
		Price:     0.25,
		Condition: 0.15,
		Seller:    0.20,
		Shipping:  0.15,
		Keyword:   0.25,
	}
}

// Score computes the five sub-scores and their weighted composite for a
// listing against the given preferences. An unset preference field
// yields a neutral 50 for its sub-score.
func Score(l *domain.Listing, prefs *domain.UserPreferences) domain.SubScoreSet {
	return ScoreWithWeights(l, prefs, DefaultWeights())
}

// ScoreWithWeights is Score with caller-supplied composite weights.
func ScoreWithWeights(
	l *domain.Listing,
	prefs *domain.UserPreferences,
	w Weights,
) domain.SubScoreSet {
	s := domain.SubScoreSet{
		Price:     priceScore(l, prefs),
		Condition: conditionScore(l, prefs),
		Seller:    sellerScore(l, prefs),
		Shipping:  shippingScore(l, prefs),
		Keyword:   keywordScore(l, prefs),
	}

	composite := s.Price*w.Price +
		s.Condition*w.Condition +
		s.Seller*w.Seller +
		s.Shipping*w.Shipping +
		s.Keyword*w.Keyword

	s.Composite = round2(composite)
	return s
}

// priceScore decreases linearly from 100 at price 0 to 50 at the budget
// ceiling. A listing over budget scores 0: a hard exclusion signal, not
// an error.
func priceScore(l *domain.Listing, prefs *domain.UserPreferences) float64 {
	if prefs.MaxPrice == nil {
		return domain.NeutralScore
	}
	maxPrice := *prefs.MaxPrice
	if maxPrice <= 0 || l.Price > maxPrice {
		return 0
	}
	return math.Max(0, 100-50*(l.Price/maxPrice))
}

func conditionScore(l *domain.Listing, prefs *domain.UserPreferences) float64 {
	if len(prefs.Conditions) == 0 {
		return domain.NeutralScore
	}

	cond := strings.ToUpper(strings.TrimSpace(l.Condition))
	for _, preferred := range prefs.Conditions {
		if strings.EqualFold(strings.TrimSpace(preferred), strings.TrimSpace(l.Condition)) {
			return 100
		}
	}

	// Partial credit when the broad condition family matches.
	if strings.Contains(cond, "NEW") && anyContains(prefs.Conditions, "NEW") {
		return 80
	}
	if strings.Contains(cond, "USED") && anyContains(prefs.Conditions, "USED") {
		return 60
	}

	return 20
}

func anyContains(values []string, substr string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToUpper(v), substr) {
			return true
		}
	}
	return false
}

// sellerScore returns 0 below the minimum rating (hard exclusion), then
// climbs from 50 at the minimum by 2 points per percentage point of
// margin, capped at 100.
func sellerScore(l *domain.Listing, prefs *domain.UserPreferences) float64 {
	if prefs.MinSellerRating == nil {
		return domain.NeutralScore
	}
	minRating := *prefs.MinSellerRating
	rating := l.Seller.FeedbackPct
	if rating < minRating {
		return 0
	}
	return math.Min(100, 50+math.Min((rating-minRating)*2, 50))
}

func shippingScore(l *domain.Listing, prefs *domain.UserPreferences) float64 {
	if !prefs.FreeShippingOnly {
		return domain.NeutralScore
	}
	if l.FreeShipping() {
		return 100
	}
	return 0
}

func keywordScore(l *domain.Listing, prefs *domain.UserPreferences) float64 {
	if len(prefs.Keywords) == 0 {
		return domain.NeutralScore
	}

	text := l.SearchText()
	matched := 0
	for _, kw := range prefs.Keywords {
		if kw == "" {
			continue
		}
		if domain.ContainsFold(text, kw) {
			matched++
		}
	}

	return math.Min(100, float64(matched)/float64(len(prefs.Keywords))*100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
