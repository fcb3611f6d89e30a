// Package domain defines the core business entities for Samarth.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Record: A formatted dataset row (text plus typed metadata)
//   - Metadata: The crop-production / rainfall tagged variant
//   - SearchResult: A nearest-neighbour hit with distance and similarity
//   - AnswerResponse: The packaged answer returned to callers
//   - IndexStatus: Observable state of the background indexing task
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
