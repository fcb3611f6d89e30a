// Package hashing provides an offline embedding service based on feature
// hashing. It needs no network or model files, produces deterministic
// L2-normalised vectors and is used for tests and air-gapped deployments.
// Retrieval quality is lexical: texts sharing words and word pairs land
// close together.
package hashing

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/custodia-labs/samarth/internal/core/domain"
	"github.com/custodia-labs/samarth/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultDimensions matches all-minilm so indexes are size-compatible.
const DefaultDimensions = 384

// bigramWeight scales word-pair features relative to single words.
const bigramWeight = 0.5

// EmbeddingService hashes word unigrams and bigrams into a fixed vector.
type EmbeddingService struct {
	dimensions int
}

// NewEmbeddingService creates a feature-hashing embedder.
func NewEmbeddingService(dimensions int) (*EmbeddingService, error) {
	if dimensions < 0 {
		return nil, domain.ErrInvalidInput
	}
	if dimensions == 0 {
		dimensions = DefaultDimensions
	}
	return &EmbeddingService{dimensions: dimensions}, nil
}

// Embed hashes the text into a unit vector. Text without any word
// characters yields the zero vector.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float64, s.dimensions)
	tokens := tokenize(text)
	for i, tok := range tokens {
		s.accumulate(vec, tok, 1)
		if i > 0 {
			s.accumulate(vec, tokens[i-1]+" "+tok, bigramWeight)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, s.dimensions)
	if norm == 0 {
		return out, nil
	}
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out, nil
}

// EmbedBatch embeds each text in order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		e, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// accumulate adds a signed feature. The bucket comes from the low bits of
// the hash and the sign from the top bit, which keeps collisions unbiased.
func (s *EmbeddingService) accumulate(vec []float64, feature string, weight float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()

	bucket := int(sum % uint64(s.dimensions))
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[bucket] += weight
}

// tokenize lower-cases text and splits it into runs of letters and digits.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns a descriptive model name.
func (s *EmbeddingService) ModelName() string {
	return "hashing"
}

// Ping always succeeds; there is nothing to reach.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
