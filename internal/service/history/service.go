package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/learnix/backend/internal/model/chat"
	"github.com/learnix/backend/internal/storage"
)

// ErrPersistence wraps storage write failures. The in-memory state is
// rolled back before the error is returned, so a failed call leaves no
// partial mutation behind.
var ErrPersistence = errors.New("history persistence failed")

// DefaultMaxMessages bounds the retained history when no limit is
// configured.
const DefaultMaxMessages = 50

// Service is the bounded chat history store. Messages are held oldest
// first; once the count exceeds the maximum, the oldest entries are
// evicted. All mutations are serialized under one mutex and persisted as
// a whole collection.
type Service struct {
	mu       sync.RWMutex
	storage  storage.HistoryStorage
	max      int
	messages []chat.Message
}

// NewService loads the persisted history and trims it to max messages.
func NewService(store storage.HistoryStorage, max int) (*Service, error) {
	if max <= 0 {
		max = DefaultMaxMessages
	}

	messages, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if len(messages) > max {
		messages = messages[len(messages)-max:]
	}

	return &Service{
		storage:  store,
		max:      max,
		messages: messages,
	}, nil
}

// Append records a new exchange as the newest entry, then evicts the
// oldest entries until the count is within the limit.
func (s *Service) Append(_ context.Context, question, answer string, sources []string) (chat.Message, error) {
	message := chat.Message{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Question:  question,
		Answer:    answer,
		Sources:   append([]string{}, sources...),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := append(append([]chat.Message(nil), s.messages...), message)
	if len(next) > s.max {
		next = next[len(next)-s.max:]
	}

	if err := s.storage.Save(next); err != nil {
		return chat.Message{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	s.messages = next
	return message, nil
}

// List returns up to limit messages, newest first. A non-positive limit
// yields an empty slice.
func (s *Service) List(_ context.Context, limit int) []chat.Message {
	if limit <= 0 {
		return []chat.Message{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit > len(s.messages) {
		limit = len(s.messages)
	}

	out := make([]chat.Message, 0, limit)
	for i := len(s.messages) - 1; i >= len(s.messages)-limit; i-- {
		out = append(out, s.messages[i])
	}
	return out
}

// Delete removes the message with the given id. Absence is reported via
// the bool, not an error.
func (s *Service) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, m := range s.messages {
		if m.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	next := append([]chat.Message(nil), s.messages[:idx]...)
	next = append(next, s.messages[idx+1:]...)

	if err := s.storage.Save(next); err != nil {
		return false, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	s.messages = next
	return true, nil
}

// Clear removes all messages and returns how many were removed.
func (s *Service) Clear(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := len(s.messages)
	if removed == 0 {
		return 0, nil
	}

	if err := s.storage.Save(nil); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	s.messages = nil
	return removed, nil
}

// Stats reports the retained count and the timestamp range. Both
// timestamps are nil when the history is empty.
func (s *Service) Stats(_ context.Context) chat.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := chat.Stats{TotalMessages: len(s.messages)}
	if len(s.messages) > 0 {
		oldest := s.messages[0].Timestamp
		newest := s.messages[len(s.messages)-1].Timestamp
		stats.OldestMessage = &oldest
		stats.NewestMessage = &newest
	}
	return stats
}
