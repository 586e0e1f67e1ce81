package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkessler/deal-ranker/internal/config"
	"github.com/mkessler/deal-ranker/internal/embed"
	"github.com/mkessler/deal-ranker/internal/engine"
	"github.com/mkessler/deal-ranker/pkg/dealscore"
	"github.com/mkessler/deal-ranker/pkg/logger"
	domain "github.com/mkessler/deal-ranker/pkg/types"
)

func rankCommand() *cobra.Command {
	var (
		query            string
		maxPrice         float64
		conditions       []string
		minSellerRating  float64
		freeShippingOnly bool
		keywords         []string
		noSemantic       bool
	)

	cmd := &cobra.Command{
		Use:   "rank [file]",
		Short: "Rank listings offline without starting the server",
		Long: "Reads a JSON array of listings from a file (or stdin when no file\n" +
			"is given), ranks them locally, and writes the ranked result as JSON.",
		Example: `  deal-ranker rank listings.json --query "32GB DDR4 ECC"
  cat listings.json | deal-ranker rank --max-price 50 --free-shipping-only`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadOrDefault(cfgFile)
			if err != nil {
				return err
			}

			log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

			listings, err := readListings(args)
			if err != nil {
				return err
			}

			prefs := domain.UserPreferences{
				Conditions:       conditions,
				FreeShippingOnly: freeShippingOnly,
				Keywords:         keywords,
			}
			if maxPrice > 0 {
				prefs.MaxPrice = &maxPrice
			}
			if minSellerRating > 0 {
				prefs.MinSellerRating = &minSellerRating
			}

			modelOpts := []dealscore.ModelOption{dealscore.WithLogger(log)}
			if cfg.Baselines.Source == "static" && len(cfg.Baselines.Static) > 0 {
				modelOpts = append(modelOpts, dealscore.WithMarketAverages(cfg.Baselines.Static))
			}
			model := dealscore.NewModel(modelOpts...)

			var embedder embed.Embedder
			if cfg.Embedding.Endpoint != "" {
				embedder = embed.NewClient(
					cfg.Embedding.Endpoint,
					cfg.Embedding.Model,
					cfg.Embedding.APIKey,
					embed.WithBatchSize(cfg.Embedding.BatchSize),
					embed.WithBatchDelay(cfg.Embedding.BatchDelay),
					embed.WithMaxRetries(cfg.Embedding.MaxRetries),
					embed.WithHTTPClient(&http.Client{Timeout: cfg.Embedding.Timeout}),
					embed.WithLogger(log),
				)
			}

			ranker := engine.NewRanker(embedder, model,
				engine.WithFusionWeights(engine.FusionWeights{
					Semantic:   cfg.Ranking.Weights.Semantic,
					Deal:       cfg.Ranking.Weights.Deal,
					Preference: cfg.Ranking.Weights.Preference,
				}),
				engine.WithLogger(log),
			)

			result, err := ranker.Rank(cmd.Context(), engine.RankRequest{
				Listings:    listings,
				Preferences: prefs,
				Query:       query,
				Semantic:    !noSemantic,
			})
			if err != nil {
				return fmt.Errorf("ranking listings: %w", err)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "search query for semantic relevance")
	cmd.Flags().Float64Var(&maxPrice, "max-price", 0, "maximum acceptable price (0 = no limit)")
	cmd.Flags().StringSliceVar(&conditions, "condition", nil, "acceptable conditions (repeatable)")
	cmd.Flags().Float64Var(&minSellerRating, "min-seller-rating", 0, "minimum seller feedback percentage (0 = no minimum)")
	cmd.Flags().BoolVar(&freeShippingOnly, "free-shipping-only", false, "only accept free shipping")
	cmd.Flags().StringSliceVar(&keywords, "keyword", nil, "desired keywords (repeatable)")
	cmd.Flags().BoolVar(&noSemantic, "no-semantic", false, "disable semantic ranking")

	return cmd
}

// loadOrDefault loads the config file when present. A missing file is
// fine for offline ranking, which falls back to built-in defaults.
func loadOrDefault(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func readListings(args []string) ([]domain.Listing, error) {
	var r io.Reader = os.Stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0]) //nolint:gosec // path from CLI argument
		if err != nil {
			return nil, fmt.Errorf("opening listings file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var listings []domain.Listing
	if err := json.NewDecoder(r).Decode(&listings); err != nil {
		return nil, fmt.Errorf("decoding listings JSON: %w", err)
	}
	if len(listings) == 0 {
		return nil, fmt.Errorf("no listings to rank")
	}

	return listings, nil
}
