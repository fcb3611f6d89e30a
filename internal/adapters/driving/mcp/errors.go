// Package mcp provides an MCP (Model Context Protocol) server adapter for Samarth.
// It lets AI assistants ask questions over the indexed agricultural and
// climate corpus and inspect indexing progress.
package mcp

import "errors"

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("mcp: answer service is required")
