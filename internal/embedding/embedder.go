package embedding

import (
	"context"
	"errors"
)

var (
	// ErrProviderUnavailable indicates the embedding service could not be
	// reached or returned a server error. Callers may retry.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")

	// ErrRateLimited indicates the provider rejected the request due to
	// quota exhaustion.
	ErrRateLimited = errors.New("embedding provider rate limited")
)

// Embedder maps text to a fixed-length numeric vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}
