package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/learnix/backend/internal/model/chat"
)

// HistoryStorage persists the chat history as a whole collection. Save must
// replace the previous collection atomically so a crash mid-write cannot
// leave a partially written history behind.
type HistoryStorage interface {
	Load() ([]chat.Message, error)
	Save(messages []chat.Message) error
}

type historyFile struct {
	Messages []chat.Message `json:"messages"`
}

// FileStorage stores the history in a single JSON file, replaced on every
// save via a temp file plus rename in the same directory.
type FileStorage struct {
	path string
}

// NewFileStorage prepares a file-backed storage at path, creating the
// parent directory if needed.
func NewFileStorage(path string) (*FileStorage, error) {
	if path == "" {
		return nil, fmt.Errorf("history file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	return &FileStorage{path: path}, nil
}

// Load reads the stored collection. A missing file is an empty history,
// not an error.
func (s *FileStorage) Load() ([]chat.Message, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history file: %w", err)
	}

	var file historyFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode history file: %w", err)
	}
	return file.Messages, nil
}

// Save writes the collection to a temp file and renames it over the
// previous one.
func (s *FileStorage) Save(messages []chat.Message) error {
	if messages == nil {
		messages = []chat.Message{}
	}
	data, err := json.MarshalIndent(historyFile{Messages: messages}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".history-*.json")
	if err != nil {
		return fmt.Errorf("create temp history file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp history file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp history file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp history file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace history file: %w", err)
	}
	return nil
}

// MemoryStorage keeps the collection in memory only. Used in tests and
// when no history file is configured.
type MemoryStorage struct {
	mu       sync.Mutex
	messages []chat.Message
}

// NewMemoryStorage returns an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Load returns a copy of the stored collection.
func (s *MemoryStorage) Load() ([]chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]chat.Message(nil), s.messages...), nil
}

// Save replaces the stored collection.
func (s *MemoryStorage) Save(messages []chat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append([]chat.Message(nil), messages...)
	return nil
}
