package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/samarth/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Query string `json:"query" jsonschema:"a question about Indian crop production or rainfall"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string          `json:"answer"`
	Sources   []SourceOutput  `json:"sources"`
	QueryInfo QueryInfoOutput `json:"query_info"`
}

// SourceOutput is one cited document.
type SourceOutput struct {
	Text      string         `json:"text"`
	Source    string         `json:"source"`
	Type      string         `json:"type"`
	Relevance float64        `json:"relevance"`
	Metadata  map[string]any `json:"metadata"`
}

// QueryInfoOutput carries the entities detected in the question.
type QueryInfoOutput struct {
	QueryType string   `json:"query_type,omitempty"`
	States    []string `json:"states,omitempty"`
	Crops     []string `json:"crops,omitempty"`
	Years     []int    `json:"years,omitempty"`
}

// IndexStatusInput is the empty input of the index_status tool.
type IndexStatusInput struct{}

// IndexStatusOutput describes the current or last indexing run.
type IndexStatusOutput struct {
	State          string `json:"state"`
	Reason         string `json:"reason,omitempty"`
	RunID          string `json:"run_id,omitempty"`
	StartedAt      string `json:"started_at,omitempty"`
	FinishedAt     string `json:"finished_at,omitempty"`
	DocumentsAdded int    `json:"documents_added"`
}

// StatsInput is the empty input of the stats tool.
type StatsInput struct{}

// StatsOutput reports index and cache occupancy.
type StatsOutput struct {
	IsIndexed          bool              `json:"is_indexed"`
	TotalDocuments     int               `json:"total_documents"`
	EmbeddingDimension int               `json:"embedding_dimension"`
	CacheSize          int               `json:"cache_size"`
	CacheMaxSize       int               `json:"cache_max_size"`
	CacheTTLSeconds    int               `json:"cache_ttl_seconds"`
	IndexStatus        IndexStatusOutput `json:"index_status"`
}

// SearchDatasetsInput is the input schema for the search_datasets tool.
type SearchDatasetsInput struct {
	Query string `json:"query" jsonschema:"keywords to search the data.gov.in catalogue for"`
}

// SearchDatasetsOutput lists catalogue matches.
type SearchDatasetsOutput struct {
	Results []map[string]any `json:"results"`
	Count   int              `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question about Indian agriculture and climate using data.gov.in datasets, with cited sources",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "stats",
		Description: "Report vector index and answer cache statistics",
	}, s.handleStats)

	if s.ports.Index != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "index_status",
			Description: "Report the state of the current or last indexing run",
		}, s.handleIndexStatus)
	}

	if s.ports.Datasets != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "search_datasets",
			Description: "Search the data.gov.in dataset catalogue",
		}, s.handleSearchDatasets)
	}
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if input.Query == "" {
		return nil, AskOutput{}, errors.New("query is required")
	}

	resp, err := s.ports.Answer.Answer(ctx, input.Query)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:  resp.Answer,
		Sources: make([]SourceOutput, len(resp.Sources)),
	}
	for i, src := range resp.Sources {
		output.Sources[i] = SourceOutput{
			Text:      src.Text,
			Source:    src.Source,
			Type:      src.Type,
			Relevance: src.Relevance,
			Metadata:  src.Metadata.Fields(),
		}
	}
	if info := resp.QueryInfo; info != nil {
		output.QueryInfo = QueryInfoOutput{
			QueryType: string(info.QueryType),
			States:    info.States,
			Crops:     info.Crops,
			Years:     info.Years,
		}
	}

	return nil, output, nil
}

// handleIndexStatus handles the index_status tool invocation.
func (s *Server) handleIndexStatus(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ IndexStatusInput,
) (*mcp.CallToolResult, IndexStatusOutput, error) {
	return nil, toStatusOutput(s.ports.Index.Status()), nil
}

// handleStats handles the stats tool invocation.
func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	stats := s.ports.Answer.Stats(ctx)
	return nil, StatsOutput{
		IsIndexed:          stats.IsIndexed,
		TotalDocuments:     stats.VectorStore.TotalDocuments,
		EmbeddingDimension: stats.VectorStore.EmbeddingDimension,
		CacheSize:          stats.Cache.Size,
		CacheMaxSize:       stats.Cache.MaxSize,
		CacheTTLSeconds:    stats.Cache.TTL,
		IndexStatus:        toStatusOutput(stats.IndexStatus),
	}, nil
}

// handleSearchDatasets handles the search_datasets tool invocation.
func (s *Server) handleSearchDatasets(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchDatasetsInput,
) (*mcp.CallToolResult, SearchDatasetsOutput, error) {
	results := s.ports.Datasets.SearchDatasets(ctx, input.Query)
	return nil, SearchDatasetsOutput{Results: results, Count: len(results)}, nil
}

func toStatusOutput(st domain.IndexStatus) IndexStatusOutput {
	out := IndexStatusOutput{
		State:          string(st.State),
		Reason:         st.Reason,
		RunID:          st.RunID,
		DocumentsAdded: st.DocumentsAdded,
	}
	if st.StartedAt != nil {
		out.StartedAt = st.StartedAt.UTC().Format(time.RFC3339)
	}
	if st.FinishedAt != nil {
		out.FinishedAt = st.FinishedAt.UTC().Format(time.RFC3339)
	}
	return out
}
