package chat

import "time"

// Message records a single question/answer exchange together with the
// chunk identifiers that supported the answer.
type Message struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Sources   []string  `json:"sources"`
}

// Stats summarizes the retained history. Oldest and Newest are nil when
// the history is empty.
type Stats struct {
	TotalMessages int        `json:"total_messages"`
	OldestMessage *time.Time `json:"oldest_message"`
	NewestMessage *time.Time `json:"newest_message"`
}
