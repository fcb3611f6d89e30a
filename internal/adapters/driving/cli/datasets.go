package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var datasetsJSON bool

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "Explore the data.gov.in catalogue",
}

var datasetsSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the data.gov.in dataset catalogue",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDatasetsSearch,
}

func init() {
	datasetsSearchCmd.Flags().BoolVar(&datasetsJSON, "json", false, "output results as JSON")
	datasetsCmd.AddCommand(datasetsSearchCmd)
	rootCmd.AddCommand(datasetsCmd)
}

func runDatasetsSearch(cmd *cobra.Command, args []string) error {
	if datasetService == nil {
		return errNotConfigured("dataset")
	}

	results := datasetService.SearchDatasets(cmd.Context(), strings.Join(args, " "))
	if datasetsJSON {
		return printJSON(cmd, map[string]any{"results": results, "count": len(results)})
	}

	if len(results) == 0 {
		cmd.Println("No datasets found.")
		return nil
	}
	for i, r := range results {
		cmd.Printf("  [%d] %s\n", i+1, field(r, "title"))
		if id := field(r, "index_name"); id != "" {
			cmd.Printf("      Resource: %s\n", id)
		}
	}
	return nil
}

// field returns a catalogue field as text.
func field(r map[string]any, key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
