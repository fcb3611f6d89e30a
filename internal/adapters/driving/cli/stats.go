package cli

import (
	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index and cache statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if answerService == nil {
		return errNotConfigured("answer")
	}

	stats := answerService.Stats(cmd.Context())
	if statsJSON {
		return printJSON(cmd, stats)
	}

	cmd.Println("[Vector Index]")
	cmd.Printf("  Documents: %d\n", stats.VectorStore.TotalDocuments)
	cmd.Printf("  Dimension: %d\n", stats.VectorStore.EmbeddingDimension)
	cmd.Printf("  Indexed: %t\n", stats.IsIndexed)
	cmd.Println()

	cmd.Println("[Indexing]")
	cmd.Printf("  State: %s\n", stats.IndexStatus.State)
	if stats.IndexStatus.Reason != "" {
		cmd.Printf("  Reason: %s\n", stats.IndexStatus.Reason)
	}
	if stats.IndexStatus.FinishedAt != nil {
		cmd.Printf("  Finished: %s\n", stats.IndexStatus.FinishedAt.Local().Format("2006-01-02 15:04:05"))
	}
	cmd.Println()

	cmd.Println("[Cache]")
	cmd.Printf("  Entries: %d / %d\n", stats.Cache.Size, stats.Cache.MaxSize)
	cmd.Printf("  TTL: %ds\n", stats.Cache.TTL)
	return nil
}
