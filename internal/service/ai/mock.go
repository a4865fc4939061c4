package ai

import (
	"context"
	"fmt"
	"strings"
)

const (
	mockMaxExcerpts    = 3
	mockExcerptMaxLen  = 500
	mockStreamPieceLen = 80
)

// MockGenerator answers by quoting the retrieved excerpts. It stands in
// for the Gemini model when no API key is configured, keeping the whole
// pipeline runnable offline.
type MockGenerator struct{}

// NewMockGenerator returns the offline answer generator.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate builds a deterministic answer from the first few excerpts.
func (g *MockGenerator) Generate(_ context.Context, question string, contexts []string) (string, error) {
	excerpts := make([]string, 0, mockMaxExcerpts)
	for _, ctx := range contexts {
		if strings.TrimSpace(ctx) == "" {
			continue
		}
		if runes := []rune(ctx); len(runes) > mockExcerptMaxLen {
			ctx = string(runes[:mockExcerptMaxLen]) + "..."
		}
		excerpts = append(excerpts, ctx)
		if len(excerpts) == mockMaxExcerpts {
			break
		}
	}

	if len(excerpts) == 0 {
		return fmt.Sprintf("Mock answer: no relevant content was found for %q. Please upload some documents first.", question), nil
	}

	return fmt.Sprintf(
		"Mock answer for %q.\n\nBased on the uploaded documents, the most relevant excerpts are:\n\n%s\n\nSet GEMINI_API_KEY and USE_MOCKS=0 to get AI-generated answers.",
		question,
		strings.Join(excerpts, "\n\n---\n\n"),
	), nil
}

// GenerateStream emits the mock answer in fixed-size pieces so streaming
// clients can be exercised without a model.
func (g *MockGenerator) GenerateStream(ctx context.Context, question string, contexts []string, onDelta func(string) error) (string, error) {
	answer, err := g.Generate(ctx, question, contexts)
	if err != nil {
		return "", err
	}

	runes := []rune(answer)
	for start := 0; start < len(runes); start += mockStreamPieceLen {
		end := start + mockStreamPieceLen
		if end > len(runes) {
			end = len(runes)
		}
		if err := onDelta(string(runes[start:end])); err != nil {
			return "", err
		}
	}
	return answer, nil
}
