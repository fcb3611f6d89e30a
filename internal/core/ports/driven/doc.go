// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - EmbeddingService: Converts text to fixed-dimension vectors
//   - VectorIndex: Exact nearest-neighbour storage and search
//   - CacheStore: Byte store behind the result cache
//   - DataSource: Upstream open-data records (data.gov.in)
//   - IndexRunStore: Indexing run history
//   - ConfigStore: Application configuration
//   - PromptStore: LLM prompt templates
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Answer generation. Without it, answers degrade to an apology
//     while sources are still returned.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
