package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/specboard/internal/api"
	"github.com/zjrosen/specboard/internal/diff"
	"github.com/zjrosen/specboard/internal/ui/diffview"
)

var diffFormat string

var diffCmd = &cobra.Command{
	Use:   "diff <sha>",
	Short: "Print the diff of a commit",
	Long: `Fetch the unified diff of a commit from the dashboard service.

The text format prints it as-is with terminal control characters removed;
the html format prints the highlighted fragment the web dashboard shows.`,
	Example: `  specboard diff 3f2a9c1
  specboard diff 3f2a9c1 --format html > commit.html`,
	Args: cobra.ExactArgs(1),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().StringVarP(&diffFormat, "format", "f", "text", "output format: text or html")
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	switch diffFormat {
	case "text", "html":
	default:
		return fmt.Errorf("unknown format %q (expected text or html)", diffFormat)
	}

	return withClient(cmd.Context(), func(ctx context.Context, client *api.Client) error {
		text, err := client.Diff(ctx, args[0])
		if err != nil {
			return fmt.Errorf("fetching diff: %w", err)
		}

		out := cmd.OutOrStdout()
		if diffFormat == "html" {
			_, err = fmt.Fprintln(out, diff.RenderHTML(text))
			return err
		}
		_, err = fmt.Fprint(out, diffview.Plain(text))
		return err
	})
}
