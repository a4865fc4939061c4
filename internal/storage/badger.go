package storage

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/learnix/backend/internal/model/document"
)

const (
	docPrefix   = "doc:"
	chunkPrefix = "chunk:"
	seqKey      = "meta:chunk-seq"
)

// BadgerStore persists documents and chunks in an embedded Badger database
// so the index survives restarts.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) the database at dbPath.
func NewBadgerStore(dbPath string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open chunk database: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// SaveDocument writes the document record and its chunks in one
// transaction, assigning global insertion sequence numbers.
func (s *BadgerStore) SaveDocument(_ context.Context, doc document.Document, chunks []document.Chunk) error {
	return s.db.Update(func(txn *badger.Txn) error {
		seq, err := readSeq(txn)
		if err != nil {
			return err
		}

		docData, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode document: %w", err)
		}
		if err := txn.Set([]byte(docPrefix+doc.ID), docData); err != nil {
			return err
		}

		for i := range chunks {
			seq++
			chunks[i].Seq = seq
			data, err := json.Marshal(chunks[i])
			if err != nil {
				return fmt.Errorf("encode chunk %s: %w", chunks[i].ID, err)
			}
			if err := txn.Set([]byte(chunkPrefix+chunks[i].ID), data); err != nil {
				return err
			}
		}

		return writeSeq(txn, seq)
	})
}

// HasDocument reports whether a document with the given id exists.
func (s *BadgerStore) HasDocument(_ context.Context, id string) (bool, error) {
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(docPrefix + id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, err
}

// ListDocuments returns all document records sorted by upload time.
func (s *BadgerStore) ListDocuments(_ context.Context) ([]document.Document, error) {
	var docs []document.Document
	err := s.db.View(func(txn *badger.Txn) error {
		return iteratePrefix(txn, docPrefix, func(val []byte) error {
			var doc document.Document
			if err := json.Unmarshal(val, &doc); err != nil {
				return err
			}
			docs = append(docs, doc)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UploadedAt.Before(docs[j].UploadedAt)
	})
	return docs, nil
}

// AllChunks returns every stored chunk in insertion order.
func (s *BadgerStore) AllChunks(_ context.Context) ([]document.Chunk, error) {
	var chunks []document.Chunk
	err := s.db.View(func(txn *badger.Txn) error {
		return iteratePrefix(txn, chunkPrefix, func(val []byte) error {
			var chunk document.Chunk
			if err := json.Unmarshal(val, &chunk); err != nil {
				return err
			}
			chunks = append(chunks, chunk)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}

	// Badger iterates keys lexicographically; retrieval tie-breaking
	// depends on insertion order, so sort by the assigned sequence.
	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].Seq < chunks[j].Seq
	})
	return chunks, nil
}

// Close releases the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func iteratePrefix(txn *badger.Txn, prefix string, fn func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}

func readSeq(txn *badger.Txn) (uint64, error) {
	item, err := txn.Get([]byte(seqKey))
	if err == badger.ErrKeyNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var seq uint64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("corrupt chunk sequence counter")
		}
		seq = binary.BigEndian.Uint64(val)
		return nil
	})
	return seq, err
}

func writeSeq(txn *badger.Txn, seq uint64) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, seq)
	return txn.Set([]byte(seqKey), buf)
}
