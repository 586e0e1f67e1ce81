// Package cmd implements the CLI commands for the deal-ranker server.
package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "deal-ranker",
	Short: "Rank marketplace listings by preference, deal quality, and relevance",
	Long: "An API-first service that ranks marketplace listings by fusing " +
		"preference matching, a learned deal-quality model, and semantic " +
		"similarity between the search query and each listing.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	rootCmd.AddCommand(rankCommand())
	rootCmd.AddCommand(versionCommand())
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
