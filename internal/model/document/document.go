package document

import "time"

// Document describes one ingested text, identified by a content hash so
// repeated uploads of the same material are detected as duplicates.
type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	TextLength int       `json:"text_length"`
	ChunkCount int       `json:"chunk_count"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Chunk is a bounded span of document text plus its embedding vector.
// Seq is assigned by the store in insertion order and is the tie-breaker
// when two chunks score equally during retrieval.
type Chunk struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Seq        uint64    `json:"seq"`
	Text       string    `json:"text"`
	Embedding  []float32 `json:"embedding"`
}
