package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/samarth/internal/core/domain"
)

// FormatContext renders retrieved documents as numbered source blocks for
// the LLM prompt. Blocks are separated by a blank line.
func FormatContext(results []domain.SearchResult) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("[Source %d: %s]\nType: %s\nContent: %s\nRelevance Score: %.3f\n",
			i+1, r.Metadata.SourceLabel(), r.Metadata.TypeLabel(), r.Document, r.Similarity)
	}
	return strings.Join(parts, "\n\n")
}
