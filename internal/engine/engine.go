// Package engine implements the core ranking logic: it fuses the
// preference, deal quality, and semantic similarity signals into one
// explained, totally ordered result.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/mkessler/deal-ranker/internal/embed"
	"github.com/mkessler/deal-ranker/internal/metrics"
	"github.com/mkessler/deal-ranker/pkg/dealscore"
	"github.com/mkessler/deal-ranker/pkg/prefscore"
	domain "github.com/mkessler/deal-ranker/pkg/types"
)

// FusionWeights defines the relative contribution of each signal to
// the final score.
type FusionWeights struct {
	Semantic   float64
	Deal       float64
	Preference float64
}

// DefaultFusionWeights returns the fixed fusion weights.
func DefaultFusionWeights() FusionWeights {
	return FusionWeights{
		Semantic:   0.35,
		Deal:       0.35,
		Preference: 0.30,
	}
}

// RankRequest carries one ranking call's inputs.
type RankRequest struct {
	Listings    []domain.Listing
	Preferences domain.UserPreferences
	Query       string
	// Semantic is the caller's toggle for semantic ranking. Even when
	// true, the semantic phase only runs with a non-empty query and an
	// available embedding provider.
	Semantic bool
}

// RankResult is the ordered outcome of one ranking call.
type RankResult struct {
	Items []domain.RankedItem
	Total int
	// SemanticUsed reports whether the semantic phase actually ran.
	SemanticUsed bool
}

// Ranker fuses the three scoring signals. Construct one per process
// with explicit dependencies; it holds no per-request state.
type Ranker struct {
	embedder embed.Embedder
	deal     *dealscore.Model
	weights  FusionWeights
	log      *slog.Logger
}

// RankerOption configures the Ranker.
type RankerOption func(*Ranker)

// WithFusionWeights overrides the default fusion weights.
func WithFusionWeights(w FusionWeights) RankerOption {
	return func(r *Ranker) {
		r.weights = w
	}
}

// WithLogger sets the ranker's logger.
func WithLogger(log *slog.Logger) RankerOption {
	return func(r *Ranker) {
		r.log = log
	}
}

// NewRanker creates a Ranker. The embedder may be nil, in which case
// every ranking degrades to the two local signals.
func NewRanker(embedder embed.Embedder, deal *dealscore.Model, opts ...RankerOption) *Ranker {
	r := &Ranker{
		embedder: embedder,
		deal:     deal,
		weights:  DefaultFusionWeights(),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank scores, fuses, sorts, and explains the given listings. It is
// designed to always return a ranked list: embedding failures degrade
// to neutral semantic scores. The only propagated fault is an
// embedding dimension mismatch, which indicates mixed embedding models
// rather than a data condition.
func (r *Ranker) Rank(ctx context.Context, req RankRequest) (*RankResult, error) {
	start := time.Now()
	metrics.RankingRequestsTotal.Inc()

	items := make([]domain.RankedItem, len(req.Listings))
	for i := range req.Listings {
		items[i].Listing = req.Listings[i]
		items[i].Preference = prefscore.Score(&req.Listings[i], &req.Preferences)
	}

	query := strings.TrimSpace(req.Query)
	semanticUsed := false
	signals := neutralSignals(len(items))

	if query != "" && req.Semantic && r.embedder != nil && r.embedder.Available() {
		computed, err := r.semanticSignals(ctx, query, req.Listings)
		if err != nil {
			return nil, fmt.Errorf("semantic scoring: %w", err)
		}
		signals = computed
		semanticUsed = true
	}

	for i := range items {
		items[i].Semantic = signals[i]
		items[i].Deal = r.deal.Score(&req.Listings[i], req.Listings[i].Category)
		items[i].FinalScore = r.fuse(&items[i])
		items[i].Explanation = Explain(&items[i], semanticUsed)
		metrics.RankingScoreDistribution.Observe(items[i].FinalScore)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].FinalScore > items[j].FinalScore
	})

	metrics.RankingDuration.Observe(time.Since(start).Seconds())
	r.log.Debug("ranking complete",
		"listings", len(items),
		"semantic", semanticUsed,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &RankResult{
		Items:        items,
		Total:        len(items),
		SemanticUsed: semanticUsed,
	}, nil
}

// RankByPreference ranks on the preference composite alone, without
// deal or semantic signals. Unlike the fused path, it drops listings
// whose composite is zero or below, since a hard exclusion is the
// whole point of this mode.
func (r *Ranker) RankByPreference(
	listings []domain.Listing,
	prefs domain.UserPreferences,
) *RankResult {
	items := make([]domain.RankedItem, 0, len(listings))
	for i := range listings {
		scores := prefscore.Score(&listings[i], &prefs)
		if scores.Composite <= 0 {
			continue
		}
		item := domain.RankedItem{
			Listing:    listings[i],
			Preference: scores,
			Semantic:   domain.NeutralSignal(),
			FinalScore: scores.Composite,
		}
		item.Explanation = domain.Explanation{
			Overall: preferenceOnlyReason(&scores),
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].FinalScore > items[j].FinalScore
	})

	return &RankResult{Items: items, Total: len(items)}
}

// semanticSignals embeds the query and every listing, converting
// cosine similarities to 0-100 signals. Individual embedding failures
// yield unavailable signals; a whole-query failure degrades everything.
// Only a dimension mismatch is returned as an error.
func (r *Ranker) semanticSignals(
	ctx context.Context,
	query string,
	listings []domain.Listing,
) ([]domain.Signal, error) {
	queryVec := r.embedder.Embed(ctx, query)
	if queryVec == nil {
		metrics.RankingSemanticDegradedTotal.Inc()
		r.log.Warn("query embedding unavailable, semantic signal degraded")
		return unavailableSignals(len(listings)), nil
	}

	texts := make([]string, len(listings))
	for i := range listings {
		texts[i] = listings[i].SearchText()
	}

	vectors := r.embedder.EmbedBatch(ctx, texts)

	signals := make([]domain.Signal, len(listings))
	for i, vec := range vectors {
		if vec == nil {
			signals[i] = domain.UnavailableSignal()
			continue
		}
		similarity, err := embed.CosineSimilarity(queryVec, vec)
		if err != nil {
			return nil, err
		}
		signals[i] = domain.KnownSignal(embed.SimilarityScore(similarity))
	}

	return signals, nil
}

func (r *Ranker) fuse(item *domain.RankedItem) float64 {
	w := r.weights
	final := w.Semantic*item.Semantic.OrNeutral() +
		w.Deal*item.Deal.Overall +
		w.Preference*item.Preference.Composite
	return round2(final)
}

func neutralSignals(n int) []domain.Signal {
	signals := make([]domain.Signal, n)
	for i := range signals {
		signals[i] = domain.NeutralSignal()
	}
	return signals
}

func unavailableSignals(n int) []domain.Signal {
	signals := make([]domain.Signal, n)
	for i := range signals {
		signals[i] = domain.UnavailableSignal()
	}
	return signals
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
