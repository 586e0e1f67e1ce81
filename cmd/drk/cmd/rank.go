package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	apiclient "github.com/mkessler/deal-ranker/internal/api/client"
	domain "github.com/mkessler/deal-ranker/pkg/types"
)

func rankCmd() *cobra.Command {
	var (
		prefs      prefFlags
		query      string
		mode       string
		noSemantic bool
		detail     bool
	)

	cmd := &cobra.Command{
		Use:   "rank [file]",
		Short: "Rank listings from a JSON file or stdin",
		Long: "Reads a JSON array of listings from a file (or stdin when no file\n" +
			"is given) and submits them to the API server for ranking.",
		Example: `  drk rank listings.json --query "mechanical keyboard"
  cat listings.json | drk rank --max-price 150 --free-shipping-only
  drk rank listings.json --mode preference`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			listings, err := readListings(args)
			if err != nil {
				return err
			}

			req := apiclient.RankRequest{
				Listings:    listings,
				Preferences: prefs.preferences(),
				Query:       query,
				Mode:        mode,
			}
			if noSemantic {
				semantic := false
				req.Semantic = &semantic
			}

			c := newClient()
			resp, err := c.Rank(cmd.Context(), req)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(resp)
			}

			if resp.Total == 0 {
				fmt.Println("No listings ranked.")
				return nil
			}

			if detail {
				return printRankedDetail(resp.Items)
			}
			return printRankedTable(resp.Items)
		},
	}

	prefs.register(cmd)
	cmd.Flags().StringVar(&query, "query", "", "search query for semantic relevance")
	cmd.Flags().StringVar(&mode, "mode", "", "ranking mode (fused, preference)")
	cmd.Flags().BoolVar(&noSemantic, "no-semantic", false, "disable semantic ranking")
	cmd.Flags().BoolVar(&detail, "detail", false, "show explanations for each result")

	return cmd
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
