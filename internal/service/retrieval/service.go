package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/learnix/backend/internal/embedding"
	"github.com/learnix/backend/internal/model/document"
)

// ErrInvalidTopK rejects non-positive topK values before any external
// call is made.
var ErrInvalidTopK = errors.New("topK must be positive")

// ScoredChunk pairs a chunk with its similarity to the query.
type ScoredChunk struct {
	Chunk document.Chunk
	Score float64
}

// Service embeds questions and ranks stored chunks by cosine similarity.
type Service struct {
	embedder embedding.Embedder
	chunks   document.Store
}

// NewService wires the retriever to its embedding provider and chunk
// store.
func NewService(embedder embedding.Embedder, chunks document.Store) *Service {
	return &Service{embedder: embedder, chunks: chunks}
}

// Retrieve returns the topK chunks most similar to question, best first.
// Equal scores keep insertion order, so earlier chunks win ties. An empty
// chunk store yields an empty result, not an error.
func (s *Service) Retrieve(ctx context.Context, question string, topK int) ([]ScoredChunk, error) {
	if topK <= 0 {
		return nil, ErrInvalidTopK
	}

	chunks, err := s.chunks.AllChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}
	if len(chunks) == 0 {
		return []ScoredChunk{}, nil
	}

	queryVec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	scored := make([]ScoredChunk, 0, len(chunks))
	for _, chunk := range chunks {
		scored = append(scored, ScoredChunk{
			Chunk: chunk,
			Score: cosineSimilarity(queryVec, chunk.Embedding),
		})
	}

	// Chunks arrive in insertion order; the stable sort preserves it for
	// equal scores.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK], nil
}
