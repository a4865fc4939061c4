package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/learnix/backend/internal/config"
)

var (
	// ErrProviderUnavailable indicates the model API could not produce an
	// answer. Callers may retry; no history is written for failed calls.
	ErrProviderUnavailable = errors.New("answer generator unavailable")

	// ErrRateLimited indicates the model API rejected the call due to
	// quota exhaustion.
	ErrRateLimited = errors.New("answer generator rate limited")
)

// Service generates answers with a Gemini chat model behind an eino
// prompt chain.
type Service struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewService builds the Gemini client and compiles the prompt chain.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client: client,
		Model:  cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(userPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile answer chain: %w", err)
	}

	return &Service{chain: runnable}, nil
}

// Generate produces an answer for the question given the retrieved
// context excerpts.
func (s *Service) Generate(ctx context.Context, question string, contexts []string) (string, error) {
	response, err := s.chain.Invoke(ctx, chainInput(question, contexts))
	if err != nil {
		return "", classifyErr(err)
	}

	log.Printf("[ai] generated answer, length=%d", len(response.Content))
	return response.Content, nil
}

// GenerateStream streams answer deltas through onDelta and returns the
// assembled answer once the model finishes.
func (s *Service) GenerateStream(ctx context.Context, question string, contexts []string, onDelta func(string) error) (string, error) {
	stream, err := s.chain.Stream(ctx, chainInput(question, contexts))
	if err != nil {
		return "", classifyErr(err)
	}
	defer stream.Close()

	var builder strings.Builder
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return "", classifyErr(recvErr)
		}
		if chunk == nil || chunk.Content == "" {
			continue
		}

		builder.WriteString(chunk.Content)
		if err := onDelta(chunk.Content); err != nil {
			return "", err
		}
	}
	return builder.String(), nil
}

func chainInput(question string, contexts []string) map[string]any {
	return map[string]any{
		"context": strings.Join(contexts, "\n\n---\n\n"),
		"query":   question,
	}
}

// classifyErr maps model API failures onto the service error taxonomy.
// The Gemini SDK surfaces quota errors as 429/RESOURCE_EXHAUSTED text.
func classifyErr(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED") {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
}
