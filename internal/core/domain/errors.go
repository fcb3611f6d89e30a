package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown record type or provider.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrIndexingInProgress indicates an indexing run is already active.
	ErrIndexingInProgress = errors.New("indexing already in progress")

	// Vector Index Errors.

	// ErrDimensionMismatch indicates a vector does not match the index dimension.
	// This is a contract violation and is never retried.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrCorruptIndex indicates persisted index files exist but cannot be trusted.
	// Startup must fail rather than silently re-index over the data.
	ErrCorruptIndex = errors.New("persisted index is corrupt")

	// Provider Errors.

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Answers degrade to an apology message without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Neither indexing nor retrieval can run without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrDataSourceUnavailable indicates the upstream open-data API failed.
	ErrDataSourceUnavailable = errors.New("data source unavailable")

	// ErrRateLimited indicates the upstream API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
