package engine

import (
	"fmt"
	"strings"

	domain "github.com/mkessler/deal-ranker/pkg/types"
)

// Explanation thresholds.
const (
	semanticHighlyRelevant = 75
	semanticGoodMatch      = 60
	semanticSomewhat       = 40

	overallSemanticStrong = 70
	overallDealStrong     = 70
	overallSemanticOK     = 60

	notablePriceScore     = 75
	notableSellerScore    = 85
	notableShippingScore  = 80
	notableConditionScore = 80

	highlightPriceScore    = 70
	highlightKeywordScore  = 70
	highlightSellerScore   = 80
	highlightShippingScore = 80
)

// Explain derives the human-readable rationale for one scored item.
// It is pure: everything comes from already-computed scores. The
// semantic reason is omitted when the semantic phase did not run.
func Explain(item *domain.RankedItem, semanticUsed bool) domain.Explanation {
	e := domain.Explanation{
		Deal:    dealReason(&item.Deal),
		Overall: overallReason(item, semanticUsed),
	}
	if semanticUsed {
		e.Semantic = semanticReason(item.Semantic)
	}
	return e
}

func semanticReason(sig domain.Signal) string {
	switch score := sig.OrNeutral(); {
	case score >= semanticHighlyRelevant:
		return "highly relevant to your search"
	case score >= semanticGoodMatch:
		return "good match for your search"
	case score >= semanticSomewhat:
		return "somewhat relevant to your search"
	default:
		return "limited relevance to your search"
	}
}

func dealReason(ds *domain.DealScore) string {
	reason := fmt.Sprintf("%s deal (%.0f%% quality)", ds.Recommendation, ds.Overall)

	var notable []string
	if ds.Breakdown.Price > notablePriceScore {
		notable = append(notable, "competitive pricing")
	}
	if ds.Breakdown.Seller > notableSellerScore {
		notable = append(notable, "trusted seller")
	}
	if ds.Breakdown.Shipping > notableShippingScore {
		notable = append(notable, "low shipping cost")
	}
	if ds.Breakdown.Condition > notableConditionScore {
		notable = append(notable, "good condition")
	}

	if len(notable) > 0 {
		reason += ": " + strings.Join(notable, ", ")
	}
	return reason
}

func overallReason(item *domain.RankedItem, semanticUsed bool) string {
	semantic := item.Semantic.OrNeutral()
	deal := item.Deal.Overall

	var reason string
	switch {
	case semantic >= overallSemanticStrong && deal >= overallDealStrong:
		reason = "excellent match with strong deal quality"
	case semantic >= overallSemanticOK || deal >= overallDealStrong:
		reason = "good option worth considering"
	default:
		reason = cautionReason(semantic, deal, semanticUsed)
	}

	if highlights := preferenceHighlights(&item.Preference); len(highlights) > 0 {
		reason += "; " + strings.Join(highlights, ", ")
	}
	return reason
}

func cautionReason(semantic, deal float64, semanticUsed bool) string {
	weakRelevance := semanticUsed && semantic < overallSemanticOK
	weakDeal := deal < overallDealStrong

	switch {
	case weakRelevance && weakDeal:
		return "weak match: limited relevance and modest deal quality"
	case weakRelevance:
		return "weak match: limited relevance to your search"
	default:
		return "weak match: modest deal quality"
	}
}

func preferenceHighlights(s *domain.SubScoreSet) []string {
	var highlights []string
	if s.Price > highlightPriceScore {
		highlights = append(highlights, "great price")
	}
	if s.Seller > highlightSellerScore {
		highlights = append(highlights, "excellent seller")
	}
	if s.Shipping > highlightShippingScore {
		highlights = append(highlights, "free shipping")
	}
	if s.Keyword > highlightKeywordScore {
		highlights = append(highlights, "keyword match")
	}
	return highlights
}

func preferenceOnlyReason(s *domain.SubScoreSet) string {
	reason := fmt.Sprintf("preference match %.0f%%", s.Composite)
	if highlights := preferenceHighlights(s); len(highlights) > 0 {
		reason += ": " + strings.Join(highlights, ", ")
	}
	return reason
}
