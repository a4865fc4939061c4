package qa

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/learnix/backend/internal/service/history"
	"github.com/learnix/backend/internal/service/retrieval"
)

// ErrEmptyQuestion rejects blank questions before any external call.
var ErrEmptyQuestion = errors.New("question must not be empty")

// Generator produces an answer from a question and retrieved context
// excerpts.
type Generator interface {
	Generate(ctx context.Context, question string, contexts []string) (string, error)
}

// StreamingGenerator additionally delivers the answer incrementally.
// Generators without streaming support fall back to a single delta.
type StreamingGenerator interface {
	GenerateStream(ctx context.Context, question string, contexts []string, onDelta func(string) error) (string, error)
}

// Result is the outcome of one answered question.
type Result struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// Service orchestrates the question-answering pipeline: retrieve
// supporting chunks, generate an answer, record the exchange.
type Service struct {
	retriever      *retrieval.Service
	generator      Generator
	history        *history.Service
	defaultTopK    int
	recordFailures bool
}

// NewService wires the pipeline. When recordFailures is set, failed
// generation attempts are still recorded with an empty answer.
func NewService(retriever *retrieval.Service, generator Generator, hist *history.Service, defaultTopK int, recordFailures bool) *Service {
	if defaultTopK <= 0 {
		defaultTopK = 10
	}
	return &Service{
		retriever:      retriever,
		generator:      generator,
		history:        hist,
		defaultTopK:    defaultTopK,
		recordFailures: recordFailures,
	}
}

// Ask answers a question and appends the exchange to the history.
// topK == 0 applies the configured default; negative values are rejected
// by the retriever.
func (s *Service) Ask(ctx context.Context, question string, topK int) (Result, error) {
	return s.ask(ctx, question, topK, nil)
}

// AskStream behaves like Ask but delivers answer deltas through onDelta
// as they arrive. The history is appended only once the answer completes.
func (s *Service) AskStream(ctx context.Context, question string, topK int, onDelta func(string) error) (Result, error) {
	return s.ask(ctx, question, topK, onDelta)
}

func (s *Service) ask(ctx context.Context, question string, topK int, onDelta func(string) error) (Result, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Result{}, ErrEmptyQuestion
	}
	if topK == 0 {
		topK = s.defaultTopK
	}

	hits, err := s.retriever.Retrieve(ctx, question, topK)
	if err != nil {
		return Result{}, err
	}

	contexts := make([]string, 0, len(hits))
	sources := make([]string, 0, len(hits))
	for _, hit := range hits {
		contexts = append(contexts, hit.Chunk.Text)
		sources = append(sources, hit.Chunk.ID)
	}

	answer, err := s.generate(ctx, question, contexts, onDelta)
	if err != nil {
		if s.recordFailures && ctx.Err() == nil {
			if _, appendErr := s.history.Append(ctx, question, "", sources); appendErr != nil {
				log.Printf("[qa] failed to record generation failure: %v", appendErr)
			}
		}
		return Result{}, fmt.Errorf("generate answer: %w", err)
	}

	if _, err := s.history.Append(ctx, question, answer, sources); err != nil {
		return Result{}, err
	}

	return Result{Answer: answer, Sources: sources}, nil
}

func (s *Service) generate(ctx context.Context, question string, contexts []string, onDelta func(string) error) (string, error) {
	if onDelta == nil {
		return s.generator.Generate(ctx, question, contexts)
	}

	if streamer, ok := s.generator.(StreamingGenerator); ok {
		return streamer.GenerateStream(ctx, question, contexts, onDelta)
	}

	answer, err := s.generator.Generate(ctx, question, contexts)
	if err != nil {
		return "", err
	}
	if err := onDelta(answer); err != nil {
		return "", err
	}
	return answer, nil
}
