package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/specboard/internal/api"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the dashboard service is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withClient(cmd.Context(), func(ctx context.Context, client *api.Client) error {
			h, err := client.Health(ctx)
			if err != nil {
				return fmt.Errorf("%s unreachable: %w", client.BaseURL(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", client.BaseURL(), h.Status)
			if h.ProjectPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "project: %s\n", h.ProjectPath)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
