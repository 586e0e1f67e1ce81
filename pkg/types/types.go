// Package domain defines the core business types for deal-ranker.
package domain

import "strings"

// Recommendation buckets an overall deal score into a categorical verdict.
type Recommendation string

// Recommendation constants.
const (
	RecommendExcellent Recommendation = "excellent"
	RecommendGood      Recommendation = "good"
	RecommendFair      Recommendation = "fair"
	RecommendPoor      Recommendation = "poor"
)

// ShippingOption holds a single shipping choice offered by a listing.
type ShippingOption struct {
	Cost float64 `json:"cost"`
	Type string  `json:"type,omitempty"`
}

// Seller holds the seller identity and feedback reputation.
type Seller struct {
	Username    string  `json:"username"`
	FeedbackPct float64 `json:"feedback_pct"`
	Feedback    int     `json:"feedback_score"`
}

// Listing represents a single marketplace listing as supplied by the
// listing source. The ranking core never mutates a Listing.
type Listing struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Price       float64          `json:"price"`
	Currency    string           `json:"currency"`
	Condition   string           `json:"condition"`
	Seller      Seller           `json:"seller"`
	Shipping    []ShippingOption `json:"shipping,omitempty"`
	Location    string           `json:"location,omitempty"`
	Category    string           `json:"category,omitempty"`
	ItemURL     string           `json:"item_url,omitempty"`
	ImageURL    string           `json:"image_url,omitempty"`
}

// FreeShipping reports whether any shipping option costs exactly zero.
func (l *Listing) FreeShipping() bool {
	for _, s := range l.Shipping {
		if s.Cost == 0 {
			return true
		}
	}
	return false
}

// CheapestShipping returns the lowest shipping cost across options.
// The second return is false when the listing carries no shipping data.
func (l *Listing) CheapestShipping() (float64, bool) {
	if len(l.Shipping) == 0 {
		return 0, false
	}
	cheapest := l.Shipping[0].Cost
	for _, s := range l.Shipping[1:] {
		if s.Cost < cheapest {
			cheapest = s.Cost
		}
	}
	return cheapest, true
}

// SearchText returns the text used for keyword matching and embedding:
// the title, plus the description when present.
func (l *Listing) SearchText() string {
	if l.Description == "" {
		return l.Title
	}
	return l.Title + " " + l.Description
}

// UserPreferences holds the buyer's stated preferences. A nil or empty
// field is neutral: it neither rewards nor penalizes any listing.
type UserPreferences struct {
	MaxPrice         *float64 `json:"max_price,omitempty"`
	Conditions       []string `json:"conditions,omitempty"`
	MinSellerRating  *float64 `json:"min_seller_rating,omitempty"`
	FreeShippingOnly bool     `json:"free_shipping_only,omitempty"`
	Keywords         []string `json:"keywords,omitempty"`
}

// Empty reports whether no preference field is set.
func (p *UserPreferences) Empty() bool {
	return p.MaxPrice == nil &&
		len(p.Conditions) == 0 &&
		p.MinSellerRating == nil &&
		!p.FreeShippingOnly &&
		len(p.Keywords) == 0
}

// SubScoreSet holds the five independent preference sub-scores (0-100)
// and their fixed-weight composite.
type SubScoreSet struct {
	Price     float64 `json:"price"`
	Condition float64 `json:"condition"`
	Seller    float64 `json:"seller"`
	Shipping  float64 `json:"shipping"`
	Keyword   float64 `json:"keyword"`
	Composite float64 `json:"composite"`
}

// DealFeatures holds the derived numeric features feeding the deal
// quality model. PriceVsAverage lies in [-1,1]; the rest in [0,1].
type DealFeatures struct {
	PriceVsAverage float64 `json:"price_vs_average"`
	SellerRating   float64 `json:"seller_rating"`
	ShippingRatio  float64 `json:"shipping_ratio"`
	Condition      float64 `json:"condition"`
	TitleQuality   float64 `json:"title_quality"`
	Freshness      float64 `json:"freshness"`
	BidActivity    float64 `json:"bid_activity"`
}

// DealBreakdown shows the per-factor deal scores on a 0-100 scale.
type DealBreakdown struct {
	Price        float64 `json:"price"`
	Seller       float64 `json:"seller"`
	Shipping     float64 `json:"shipping"`
	Condition    float64 `json:"condition"`
	TitleQuality float64 `json:"title_quality"`
	Freshness    float64 `json:"freshness"`
}

// DealScore is the output of the deal quality model for one listing.
type DealScore struct {
	Overall        float64        `json:"overall"`
	Confidence     float64        `json:"confidence"`
	Breakdown      DealBreakdown  `json:"breakdown"`
	Recommendation Recommendation `json:"recommendation"`
}

// SignalState distinguishes the three ways a score signal can exist.
type SignalState int

// Signal states.
const (
	// SignalUnavailable means the signal could not be computed (provider
	// down, call failed after retries).
	SignalUnavailable SignalState = iota
	// SignalNeutral means the signal was deliberately skipped (no query,
	// semantic ranking disabled).
	SignalNeutral
	// SignalKnown means the signal carries a computed value.
	SignalKnown
)

// NeutralScore is the value substituted for any signal that cannot be
// computed, chosen to avoid biasing the fused rank up or down.
const NeutralScore = 50.0

// Signal is a score that is either Known(value), Neutral, or Unavailable.
// Consumers must handle the no-signal states explicitly instead of
// relying on a default-coalesced number.
type Signal struct {
	state SignalState
	value float64
}

// KnownSignal returns a Signal carrying a computed value.
func KnownSignal(v float64) Signal {
	return Signal{state: SignalKnown, value: v}
}

// NeutralSignal returns a Signal for a deliberately skipped computation.
func NeutralSignal() Signal {
	return Signal{state: SignalNeutral}
}

// UnavailableSignal returns a Signal for a failed computation.
func UnavailableSignal() Signal {
	return Signal{state: SignalUnavailable}
}

// State returns the signal state.
func (s Signal) State() SignalState {
	return s.state
}

// Known reports whether the signal carries a computed value.
func (s Signal) Known() bool {
	return s.state == SignalKnown
}

// Value returns the computed value and whether one exists.
func (s Signal) Value() (float64, bool) {
	if s.state != SignalKnown {
		return 0, false
	}
	return s.value, true
}

// OrNeutral returns the computed value, or NeutralScore when the signal
// is neutral or unavailable.
func (s Signal) OrNeutral() float64 {
	if s.state != SignalKnown {
		return NeutralScore
	}
	return s.value
}

// Explanation holds the human-readable rationale for a ranked item.
// Semantic is empty when no query was supplied.
type Explanation struct {
	Semantic string `json:"semantic,omitempty"`
	Deal     string `json:"deal"`
	Overall  string `json:"overall"`
}

// RankedItem is a Listing augmented with all per-item signals, the fused
// final score, and its explanation. FinalScore determines rank order.
type RankedItem struct {
	Listing     Listing     `json:"listing"`
	Preference  SubScoreSet `json:"preference"`
	Deal        DealScore   `json:"deal"`
	Semantic    Signal      `json:"-"`
	FinalScore  float64     `json:"final_score"`
	Explanation Explanation `json:"explanation"`
}

// SemanticValue exposes the semantic score for serialization: a nil
// pointer when the signal is not known.
func (r *RankedItem) SemanticValue() *float64 {
	if v, ok := r.Semantic.Value(); ok {
		return &v
	}
	return nil
}

// ContainsFold reports whether s contains substr, ignoring case.
// Shared by the preference scorer and the title quality heuristic.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
