package engine

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkessler/deal-ranker/internal/embed"
	"github.com/mkessler/deal-ranker/pkg/dealscore"
	domain "github.com/mkessler/deal-ranker/pkg/types"
)

// fakeEmbedder maps text substrings to fixed vectors. Texts matching
// no rule get a nil vector, i.e. an unavailable embedding.
type fakeEmbedder struct {
	available bool
	queryVec  []float64
	rules     map[string][]float64
}

func (f *fakeEmbedder) Available() bool { return f.available }

func (f *fakeEmbedder) Embed(_ context.Context, text string) []float64 {
	for substr, vec := range f.rules {
		if strings.Contains(text, substr) {
			return vec
		}
	}
	return f.queryVec
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) [][]float64 {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		for substr, vec := range f.rules {
			if strings.Contains(text, substr) {
				out[i] = vec
				break
			}
		}
	}
	return out
}

func testListings() []domain.Listing {
	return []domain.Listing{
		{
			ID:       "1",
			Title:    "Dell PowerEdge R740 server",
			Price:    300,
			Category: "computers",
			Seller:   domain.Seller{Username: "a", FeedbackPct: 99.5},
		},
		{
			ID:       "2",
			Title:    "Broken laptop for parts",
			Price:    600,
			Category: "computers",
			Seller:   domain.Seller{Username: "b", FeedbackPct: 88},
		},
		{
			ID:       "3",
			Title:    "Mystery box",
			Price:    100,
			Category: "general",
			Seller:   domain.Seller{Username: "c", FeedbackPct: 95},
		},
	}
}

func newTestRanker(e embed.Embedder) *Ranker {
	return NewRanker(e, dealscore.NewModel())
}

func TestRank_NoQueryUsesNeutralSemantic(t *testing.T) {
	t.Parallel()

	r := newTestRanker(nil)
	res, err := r.Rank(context.Background(), RankRequest{
		Listings: testListings(),
		Semantic: true,
	})
	require.NoError(t, err)

	assert.False(t, res.SemanticUsed)
	assert.Equal(t, 3, res.Total)
	for _, item := range res.Items {
		assert.Equal(t, domain.SignalNeutral, item.Semantic.State())
	}
}

func TestRank_FusionIsWeightedSum(t *testing.T) {
	t.Parallel()

	r := newTestRanker(nil)
	res, err := r.Rank(context.Background(), RankRequest{
		Listings: testListings(),
	})
	require.NoError(t, err)

	w := DefaultFusionWeights()
	for _, item := range res.Items {
		want := w.Semantic*item.Semantic.OrNeutral() +
			w.Deal*item.Deal.Overall +
			w.Preference*item.Preference.Composite
		want = math.Round(want*100) / 100
		assert.InDelta(t, want, item.FinalScore, 1e-9, "listing %s", item.Listing.ID)
	}
}

func TestRank_SortsDescendingByFinalScore(t *testing.T) {
	t.Parallel()

	r := newTestRanker(nil)
	res, err := r.Rank(context.Background(), RankRequest{
		Listings: testListings(),
	})
	require.NoError(t, err)

	for i := 1; i < len(res.Items); i++ {
		assert.GreaterOrEqual(t,
			res.Items[i-1].FinalScore, res.Items[i].FinalScore,
			"position %d out of order", i,
		)
	}
}

func TestRank_SemanticSignalsApplied(t *testing.T) {
	t.Parallel()

	e := &fakeEmbedder{
		available: true,
		queryVec:  []float64{1, 0},
		rules: map[string][]float64{
			"PowerEdge": {1, 0},  // similarity 1 -> 100
			"Broken":    {-1, 0}, // similarity -1 -> 0
			"Mystery":   nil,     // embedding unavailable
		},
	}

	r := newTestRanker(e)
	res, err := r.Rank(context.Background(), RankRequest{
		Listings: testListings(),
		Query:    "rack server",
		Semantic: true,
	})
	require.NoError(t, err)
	assert.True(t, res.SemanticUsed)

	byID := make(map[string]domain.RankedItem)
	for _, item := range res.Items {
		byID[item.Listing.ID] = item
	}

	v, ok := byID["1"].Semantic.Value()
	require.True(t, ok)
	assert.InDelta(t, 100, v, 1e-9)

	v, ok = byID["2"].Semantic.Value()
	require.True(t, ok)
	assert.InDelta(t, 0, v, 1e-9)

	assert.Equal(t, domain.SignalUnavailable, byID["3"].Semantic.State())
}

func TestRank_SemanticDisabledByFlag(t *testing.T) {
	t.Parallel()

	e := &fakeEmbedder{available: true, queryVec: []float64{1, 0}}
	r := newTestRanker(e)

	res, err := r.Rank(context.Background(), RankRequest{
		Listings: testListings(),
		Query:    "rack server",
		Semantic: false,
	})
	require.NoError(t, err)
	assert.False(t, res.SemanticUsed)
}

func TestRank_QueryEmbeddingFailureDegradesAll(t *testing.T) {
	t.Parallel()

	e := &fakeEmbedder{available: true, queryVec: nil}
	r := newTestRanker(e)

	res, err := r.Rank(context.Background(), RankRequest{
		Listings: testListings(),
		Query:    "rack server",
		Semantic: true,
	})
	require.NoError(t, err)

	assert.True(t, res.SemanticUsed)
	for _, item := range res.Items {
		assert.Equal(t, domain.SignalUnavailable, item.Semantic.State())
	}
}

func TestRank_DimensionMismatchPropagates(t *testing.T) {
	t.Parallel()

	e := &fakeEmbedder{
		available: true,
		queryVec:  []float64{1, 0},
		rules: map[string][]float64{
			"PowerEdge": {1, 0, 0},
		},
	}
	r := newTestRanker(e)

	_, err := r.Rank(context.Background(), RankRequest{
		Listings: testListings(),
		Query:    "rack server",
		Semantic: true,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, embed.ErrDimensionMismatch)
}

func TestRank_EmptyListings(t *testing.T) {
	t.Parallel()

	r := newTestRanker(nil)
	res, err := r.Rank(context.Background(), RankRequest{})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Equal(t, 0, res.Total)
}

func TestRankByPreference_DropsHardExclusions(t *testing.T) {
	t.Parallel()

	maxPrice := 200.0
	prefs := domain.UserPreferences{MaxPrice: &maxPrice}

	listings := []domain.Listing{
		{ID: "cheap", Title: "Cheap item", Price: 50},
		{ID: "expensive", Title: "Expensive item", Price: 5000},
	}

	r := newTestRanker(nil)
	res := r.RankByPreference(listings, prefs)

	require.Len(t, res.Items, 2)
	assert.Equal(t, "cheap", res.Items[0].Listing.ID)
	assert.Greater(t, res.Items[0].FinalScore, res.Items[1].FinalScore)
}

func TestRankByPreference_OrdersByComposite(t *testing.T) {
	t.Parallel()

	prefs := domain.UserPreferences{Keywords: []string{"server"}}
	listings := []domain.Listing{
		{ID: "miss", Title: "Desk lamp", Price: 20},
		{ID: "hit", Title: "Rack server", Price: 20},
	}

	r := newTestRanker(nil)
	res := r.RankByPreference(listings, prefs)

	require.Len(t, res.Items, 2)
	assert.Equal(t, "hit", res.Items[0].Listing.ID)
	assert.NotEmpty(t, res.Items[0].Explanation.Overall)
	assert.Empty(t, res.Items[0].Explanation.Semantic)
}
