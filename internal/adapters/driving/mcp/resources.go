package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// uriScheme is the custom URI scheme for Samarth resources.
const uriScheme = "samarth://"

// historyLimit bounds the runs listed by the history resource.
const historyLimit = 20

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "stats",
		Name:        "stats",
		Description: "Vector index and answer cache statistics",
		MIMEType:    "application/json",
	}, s.handleStatsResource)

	if s.ports.Index != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         uriScheme + "index/history",
			Name:        "index-history",
			Description: "Recent indexing runs, newest first",
			MIMEType:    "application/json",
		}, s.handleHistoryResource)
	}
}

// handleStatsResource returns the stats as JSON.
func (s *Server) handleStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, s.ports.Answer.Stats(ctx))
}

// handleHistoryResource returns recent indexing runs as JSON.
func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	runs, err := s.ports.Index.History(ctx, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("listing index runs: %w", err)
	}
	return jsonResource(req.Params.URI, runs)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
