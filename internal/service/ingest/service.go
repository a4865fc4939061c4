package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/learnix/backend/internal/embedding"
	"github.com/learnix/backend/internal/model/document"
)

// ErrEmptyText rejects ingestion requests without any usable text.
var ErrEmptyText = errors.New("document text is empty")

// Service chunks and embeds uploaded text and stores the result in the
// chunk store. Documents are identified by a content hash so re-uploading
// the same material is detected as a duplicate instead of re-indexed.
type Service struct {
	chunks    document.Store
	embedder  embedding.Embedder
	chunkSize int
	overlap   int
}

// NewService wires ingestion to its chunk store and embedding provider.
func NewService(chunks document.Store, embedder embedding.Embedder, chunkSize, overlap int) *Service {
	return &Service{
		chunks:    chunks,
		embedder:  embedder,
		chunkSize: chunkSize,
		overlap:   overlap,
	}
}

// Ingest indexes one document. The returned bool is true when the text
// was already ingested; nothing is written in that case.
func (s *Service) Ingest(ctx context.Context, name, text string) (document.Document, bool, error) {
	parts := splitText(text, s.chunkSize, s.overlap)
	if len(parts) == 0 {
		return document.Document{}, false, ErrEmptyText
	}

	sum := sha256.Sum256([]byte(text))
	docID := hex.EncodeToString(sum[:])

	exists, err := s.chunks.HasDocument(ctx, docID)
	if err != nil {
		return document.Document{}, false, fmt.Errorf("check for duplicate: %w", err)
	}
	if exists {
		log.Printf("[ingest] duplicate detected: %s", name)
		return document.Document{ID: docID, Name: name}, true, nil
	}

	chunks := make([]document.Chunk, 0, len(parts))
	for i, part := range parts {
		vec, err := s.embedder.Embed(ctx, part)
		if err != nil {
			return document.Document{}, false, fmt.Errorf("embed chunk %d: %w", i, err)
		}
		chunks = append(chunks, document.Chunk{
			ID:         fmt.Sprintf("%s_chunk_%d", docID, i),
			DocumentID: docID,
			Text:       part,
			Embedding:  vec,
		})
	}

	doc := document.Document{
		ID:         docID,
		Name:       name,
		TextLength: len(text),
		ChunkCount: len(chunks),
		UploadedAt: time.Now().UTC(),
	}
	if err := s.chunks.SaveDocument(ctx, doc, chunks); err != nil {
		return document.Document{}, false, fmt.Errorf("save document: %w", err)
	}

	log.Printf("[ingest] indexed %s: %d chunks", name, len(chunks))
	return doc, false, nil
}

// Documents lists all ingested documents in upload order.
func (s *Service) Documents(ctx context.Context) ([]document.Document, error) {
	return s.chunks.ListDocuments(ctx)
}
