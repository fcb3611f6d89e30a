package mcp

import (
	"github.com/custodia-labs/samarth/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Answer runs the question answering pipeline.
	Answer driving.AnswerService

	// Index reports and starts indexing runs.
	Index driving.IndexService

	// Datasets searches the upstream catalogue.
	Datasets driving.DatasetService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	// Index and Datasets are optional
	return nil
}
