package document

import (
	"context"
	"sync"
)

// Store exposes chunk and document access for ingestion and retrieval.
// AllChunks returns chunks in insertion order.
type Store interface {
	SaveDocument(ctx context.Context, doc Document, chunks []Chunk) error
	HasDocument(ctx context.Context, id string) (bool, error)
	ListDocuments(ctx context.Context) ([]Document, error)
	AllChunks(ctx context.Context) ([]Chunk, error)
	Close() error
}

// MemoryStore implements Store with in-memory slices, suitable for tests
// and deployments without a configured chunk database.
type MemoryStore struct {
	mu     sync.RWMutex
	docs   []Document
	chunks []Chunk
	seq    uint64
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// SaveDocument records the document and appends its chunks, assigning
// each chunk a global insertion sequence number.
func (s *MemoryStore) SaveDocument(_ context.Context, doc Document, chunks []Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range chunks {
		s.seq++
		chunks[i].Seq = s.seq
	}
	s.docs = append(s.docs, doc)
	s.chunks = append(s.chunks, chunks...)
	return nil
}

// HasDocument reports whether a document with the given id was ingested.
func (s *MemoryStore) HasDocument(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.docs {
		if d.ID == id {
			return true, nil
		}
	}
	return false, nil
}

// ListDocuments returns the ingested documents in upload order.
func (s *MemoryStore) ListDocuments(_ context.Context) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Document(nil), s.docs...), nil
}

// AllChunks returns every stored chunk in insertion order.
func (s *MemoryStore) AllChunks(_ context.Context) ([]Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Chunk(nil), s.chunks...), nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }
