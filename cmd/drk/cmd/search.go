package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	apiclient "github.com/mkessler/deal-ranker/internal/api/client"
)

func searchCmd() *cobra.Command {
	var (
		prefs      prefFlags
		limit      int
		category   string
		sortOrder  string
		noSemantic bool
		detail     bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search eBay and rank the results",
		Long: "Sends a search request to the API server, which fetches live eBay\n" +
			"listings and returns them ranked against your preferences.",
		Example: `  drk search "DDR4 ECC 32GB RDIMM"
  drk search "mechanical keyboard" --max-price 150 --condition used
  drk search "Dell PowerEdge R630" --limit 25 --detail`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := apiclient.SearchRequest{
				Query:       args[0],
				CategoryID:  category,
				MaxResults:  limit,
				Sort:        sortOrder,
				Preferences: prefs.preferences(),
			}
			if noSemantic {
				semantic := false
				req.Semantic = &semantic
			}

			c := newClient()
			resp, err := c.Search(cmd.Context(), req)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(resp)
			}

			if resp.Total == 0 {
				fmt.Println("No results found.")
				return nil
			}

			if detail {
				if err := printRankedDetail(resp.Items); err != nil {
					return err
				}
			} else {
				if err := printRankedTable(resp.Items); err != nil {
					return err
				}
			}

			fmt.Printf("\n%d results from %d listings seen (%d pages)\n",
				resp.Total, resp.TotalSeen, resp.PagesUsed)
			return nil
		},
	}

	prefs.register(cmd)
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results")
	cmd.Flags().StringVar(&category, "category", "", "eBay category ID")
	cmd.Flags().StringVar(&sortOrder, "sort", "", "eBay sort order (price, -price, newlyListed)")
	cmd.Flags().BoolVar(&noSemantic, "no-semantic", false, "disable semantic ranking")
	cmd.Flags().BoolVar(&detail, "detail", false, "show explanations for each result")

	return cmd
}
