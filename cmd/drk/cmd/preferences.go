package cmd

import (
	"github.com/spf13/cobra"

	domain "github.com/mkessler/deal-ranker/pkg/types"
)

// prefFlags holds the user-preference flags shared by rank and search.
type prefFlags struct {
	maxPrice         float64
	conditions       []string
	minSellerRating  float64
	freeShippingOnly bool
	keywords         []string
}

func (p *prefFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&p.maxPrice, "max-price", 0, "maximum acceptable price (0 = no limit)")
	cmd.Flags().StringSliceVar(&p.conditions, "condition", nil, "acceptable conditions (repeatable)")
	cmd.Flags().Float64Var(&p.minSellerRating, "min-seller-rating", 0, "minimum seller feedback percentage (0 = no minimum)")
	cmd.Flags().BoolVar(&p.freeShippingOnly, "free-shipping-only", false, "only accept free shipping")
	cmd.Flags().StringSliceVar(&p.keywords, "keyword", nil, "desired keywords (repeatable)")
}

func (p *prefFlags) preferences() domain.UserPreferences {
	prefs := domain.UserPreferences{
		Conditions:       p.conditions,
		FreeShippingOnly: p.freeShippingOnly,
		Keywords:         p.keywords,
	}
	if p.maxPrice > 0 {
		prefs.MaxPrice = &p.maxPrice
	}
	if p.minSellerRating > 0 {
		prefs.MinSellerRating = &p.minSellerRating
	}
	return prefs
}
