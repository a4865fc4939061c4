package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
)

// DefaultMockDimension matches the all-MiniLM-L6-v2 model the production
// deployment uses, so mock and real vectors are interchangeable in tests.
const DefaultMockDimension = 384

// MockEmbedder produces deterministic pseudo-embeddings seeded from a hash
// of the text: the same text always yields the same unit vector. Used when
// no embedding service is configured.
type MockEmbedder struct {
	dim int
}

// NewMockEmbedder returns a mock embedder of the given dimension.
func NewMockEmbedder(dim int) *MockEmbedder {
	if dim <= 0 {
		dim = DefaultMockDimension
	}
	return &MockEmbedder{dim: dim}
}

// Embed returns the deterministic vector for text. Blank text maps to the
// zero vector.
func (e *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dim)
	if strings.TrimSpace(text) == "" {
		return vec, nil
	}

	h := fnv.New64a()
	h.Write([]byte(text))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	var norm float64
	for i := range vec {
		v := rng.Float64()
		vec[i] = float32(v)
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec, nil
}

// Dimension returns the vector length.
func (e *MockEmbedder) Dimension() int { return e.dim }
