package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the API server is up",
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			if err := c.Health(context.Background()); err != nil {
				return err
			}

			fmt.Println("Server is healthy.")
			return nil
		},
	}
}
