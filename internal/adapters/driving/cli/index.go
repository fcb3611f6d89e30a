package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/samarth/internal/core/domain"
)

var indexJSON bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Fetch datasets and rebuild the vector index",
	Long: `Fetches crop production and rainfall records from data.gov.in, embeds
them and atomically replaces the persisted index.

A dataset that cannot be fetched is skipped; the run still completes with
the remaining data. A running server picks up the new index automatically.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent indexing runs",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	indexCmd.Flags().BoolVar(&indexJSON, "json", false, "output the final status as JSON")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "maximum number of runs")
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(historyCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errNotConfigured("index")
	}

	if !indexJSON {
		cmd.Println("Indexing data.gov.in datasets...")
	}
	runErr := indexService.Run(cmd.Context())
	status := indexService.Status()

	if indexJSON {
		if err := printJSON(cmd, status); err != nil {
			return err
		}
		return runErr
	}
	if runErr != nil {
		return fmt.Errorf("indexing failed: %w", runErr)
	}

	runs, err := indexService.History(cmd.Context(), 1)
	if err != nil || len(runs) != 1 {
		cmd.Printf("Indexed %d documents (run %s)\n", status.DocumentsAdded, status.RunID)
		return nil
	}
	if runs[0].TotalDocuments() == 0 {
		cmd.Printf("No data could be fetched; kept the previous index (%d documents)\n", status.DocumentsAdded)
	} else {
		cmd.Printf("Indexed %d documents (run %s)\n", status.DocumentsAdded, status.RunID)
	}
	for _, category := range runs[0].Skipped {
		cmd.Printf("  Skipped: %s (fetch failed)\n", category)
	}
	return nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errNotConfigured("index")
	}

	runs, err := indexService.History(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		cmd.Println("No indexing runs recorded.")
		return nil
	}

	for _, run := range runs {
		cmd.Printf("%s  %-11s  %s  %d docs\n",
			run.StartedAt.Local().Format("2006-01-02 15:04:05"), run.State, run.ID, run.TotalDocuments())
		if run.State == domain.IndexStateFailed && run.Reason != "" {
			cmd.Printf("    Reason: %s\n", run.Reason)
		}
		for _, category := range run.Skipped {
			cmd.Printf("    Skipped: %s\n", category)
		}
	}
	return nil
}
