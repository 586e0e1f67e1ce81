package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func baselinesCmd() *cobra.Command {
	baselinesRoot := &cobra.Command{
		Use:   "baselines",
		Short: "Inspect and refresh market baselines",
	}

	baselinesRoot.AddCommand(
		baselinesListCmd(),
		baselinesRefreshCmd(),
	)

	return baselinesRoot
}

func baselinesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the market-average table in use by the server",
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			baselines, err := c.GetBaselines(context.Background())
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(baselines)
			}

			if len(baselines.Averages) == 0 {
				fmt.Println("No baselines found.")
				return nil
			}

			return printBaselinesTable(baselines)
		},
	}
}

func baselinesRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Trigger an immediate market-average reload",
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			if err := c.RefreshBaselines(context.Background()); err != nil {
				return err
			}

			fmt.Println("Baseline refresh completed.")
			return nil
		},
	}
}
