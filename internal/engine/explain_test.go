package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domain "github.com/mkessler/deal-ranker/pkg/types"
)

func TestSemanticReason(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score float64
		want  string
	}{
		{90, "highly relevant to your search"},
		{75, "highly relevant to your search"},
		{65, "good match for your search"},
		{50, "somewhat relevant to your search"},
		{40, "somewhat relevant to your search"},
		{10, "limited relevance to your search"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, semanticReason(domain.KnownSignal(tt.score)),
			"score %.0f", tt.score)
	}
}

func TestSemanticReason_UnavailableReadsAsNeutral(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "somewhat relevant to your search",
		semanticReason(domain.UnavailableSignal()))
}

func TestDealReason(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ds   domain.DealScore
		want string
	}{
		{
			name: "plain",
			ds: domain.DealScore{
				Overall:        55,
				Recommendation: domain.RecommendFair,
			},
			want: "fair deal (55% quality)",
		},
		{
			name: "all notable factors",
			ds: domain.DealScore{
				Overall:        88,
				Recommendation: domain.RecommendExcellent,
				Breakdown: domain.DealBreakdown{
					Price:     80,
					Seller:    90,
					Shipping:  85,
					Condition: 85,
				},
			},
			want: "excellent deal (88% quality): competitive pricing, trusted seller, low shipping cost, good condition",
		},
		{
			name: "one notable factor",
			ds: domain.DealScore{
				Overall:        70,
				Recommendation: domain.RecommendGood,
				Breakdown:      domain.DealBreakdown{Price: 76},
			},
			want: "good deal (70% quality): competitive pricing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, dealReason(&tt.ds))
		})
	}
}

func TestOverallReason(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		semantic     domain.Signal
		deal         float64
		prefs        domain.SubScoreSet
		semanticUsed bool
		want         string
	}{
		{
			name:         "excellent when both strong",
			semantic:     domain.KnownSignal(85),
			deal:         80,
			semanticUsed: true,
			want:         "excellent match with strong deal quality",
		},
		{
			name:         "good when only deal strong",
			semantic:     domain.KnownSignal(30),
			deal:         75,
			semanticUsed: true,
			want:         "good option worth considering",
		},
		{
			name:         "good when only semantic decent",
			semantic:     domain.KnownSignal(65),
			deal:         40,
			semanticUsed: true,
			want:         "good option worth considering",
		},
		{
			name:         "caution both weak",
			semantic:     domain.KnownSignal(20),
			deal:         30,
			semanticUsed: true,
			want:         "weak match: limited relevance and modest deal quality",
		},
		{
			name:     "caution deal only without query",
			semantic: domain.NeutralSignal(),
			deal:     30,
			want:     "weak match: modest deal quality",
		},
		{
			name:         "highlights appended",
			semantic:     domain.KnownSignal(85),
			deal:         80,
			prefs:        domain.SubScoreSet{Price: 90, Keyword: 100},
			semanticUsed: true,
			want:         "excellent match with strong deal quality; great price, keyword match",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			item := &domain.RankedItem{
				Semantic:   tt.semantic,
				Deal:       domain.DealScore{Overall: tt.deal},
				Preference: tt.prefs,
			}
			assert.Equal(t, tt.want, overallReason(item, tt.semanticUsed))
		})
	}
}

func TestExplain_OmitsSemanticWithoutQuery(t *testing.T) {
	t.Parallel()

	item := &domain.RankedItem{
		Semantic: domain.NeutralSignal(),
		Deal: domain.DealScore{
			Overall:        70,
			Recommendation: domain.RecommendGood,
		},
	}

	e := Explain(item, false)
	assert.Empty(t, e.Semantic)
	assert.NotEmpty(t, e.Deal)
	assert.NotEmpty(t, e.Overall)

	e = Explain(item, true)
	assert.NotEmpty(t, e.Semantic)
}

func TestPreferenceOnlyReason(t *testing.T) {
	t.Parallel()

	s := domain.SubScoreSet{
		Price:     80,
		Seller:    90,
		Shipping:  100,
		Keyword:   100,
		Composite: 88,
	}
	assert.Equal(t,
		"preference match 88%: great price, excellent seller, free shipping, keyword match",
		preferenceOnlyReason(&s),
	)

	plain := domain.SubScoreSet{Composite: 42}
	assert.Equal(t, "preference match 42%", preferenceOnlyReason(&plain))
}
