package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/samarth/internal/core/domain"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about crops or rainfall",
	Long: `Answers a question from the indexed data.gov.in records.

Examples:
  samarth ask "What was the wheat production in Punjab in 2010?"
  samarth ask "Compare rainfall in Kerala and Karnataka" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the response as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errNotConfigured("answer")
	}

	query := strings.Join(args, " ")
	resp, err := answerService.Answer(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return printJSON(cmd, resp)
	}
	printAnswer(cmd, resp)
	return nil
}

func printAnswer(cmd *cobra.Command, resp domain.AnswerResponse) {
	cmd.Println(resp.Answer)
	if len(resp.Sources) == 0 {
		return
	}

	cmd.Println()
	cmd.Println("Sources:")
	for i, src := range resp.Sources {
		cmd.Printf("  [%d] %s (%s, relevance %.3f)\n", i+1, src.Source, src.Type, src.Relevance)
		cmd.Printf("      %s\n", src.Text)
	}
}
