package history_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/learnix/backend/internal/model/chat"
	history "github.com/learnix/backend/internal/service/history"
	"github.com/learnix/backend/internal/storage"
)

func newService(t *testing.T, max int) *history.Service {
	t.Helper()
	svc, err := history.NewService(storage.NewMemoryStorage(), max)
	if err != nil {
		t.Fatalf("NewService err: %v", err)
	}
	return svc
}

func TestAppendAndList(t *testing.T) {
	svc := newService(t, 50)
	ctx := context.Background()

	msg, err := svc.Append(ctx, "what is photosynthesis", "an answer", []string{"c1", "c2"})
	if err != nil {
		t.Fatalf("Append err: %v", err)
	}
	if msg.ID == "" {
		t.Fatal("expected generated message id")
	}

	messages := svc.List(ctx, 10)
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	got := messages[0]
	if got.Question != "what is photosynthesis" || got.Answer != "an answer" {
		t.Fatalf("unexpected message: %+v", got)
	}
	if len(got.Sources) != 2 || got.Sources[0] != "c1" || got.Sources[1] != "c2" {
		t.Fatalf("sources not round-tripped: %v", got.Sources)
	}
}

func TestListNewestFirst(t *testing.T) {
	svc := newService(t, 50)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := svc.Append(ctx, fmt.Sprintf("q%d", i), "a", nil); err != nil {
			t.Fatalf("Append err: %v", err)
		}
	}

	messages := svc.List(ctx, 3)
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	if messages[0].Question != "q4" || messages[1].Question != "q3" || messages[2].Question != "q2" {
		t.Fatalf("unexpected order: %s %s %s", messages[0].Question, messages[1].Question, messages[2].Question)
	}
	for i := 1; i < len(messages); i++ {
		if messages[i].Timestamp.After(messages[i-1].Timestamp) {
			t.Fatal("timestamps not non-increasing")
		}
	}
}

func TestListLimitEdgeCases(t *testing.T) {
	svc := newService(t, 50)
	ctx := context.Background()

	if _, err := svc.Append(ctx, "q", "a", nil); err != nil {
		t.Fatalf("Append err: %v", err)
	}

	if got := svc.List(ctx, 0); len(got) != 0 {
		t.Fatalf("limit 0 should be empty, got %d", len(got))
	}
	if got := svc.List(ctx, -1); len(got) != 0 {
		t.Fatalf("negative limit should be empty, got %d", len(got))
	}
	if got := svc.List(ctx, 100); len(got) != 1 {
		t.Fatalf("oversized limit should return all, got %d", len(got))
	}
}

func TestRetentionEvictsOldest(t *testing.T) {
	svc := newService(t, 50)
	ctx := context.Background()

	for i := 0; i < 51; i++ {
		if _, err := svc.Append(ctx, fmt.Sprintf("q%d", i), "a", nil); err != nil {
			t.Fatalf("Append err: %v", err)
		}
		if count := svc.Stats(ctx).TotalMessages; count > 50 {
			t.Fatalf("count exceeded max after append %d: %d", i, count)
		}
	}

	messages := svc.List(ctx, 100)
	if len(messages) != 50 {
		t.Fatalf("expected 50 retained, got %d", len(messages))
	}
	if messages[0].Question != "q50" {
		t.Fatalf("newest should be q50, got %s", messages[0].Question)
	}
	if messages[len(messages)-1].Question != "q1" {
		t.Fatalf("q0 should have been evicted, oldest is %s", messages[len(messages)-1].Question)
	}
}

func TestDelete(t *testing.T) {
	svc := newService(t, 50)
	ctx := context.Background()

	msg, err := svc.Append(ctx, "q", "a", nil)
	if err != nil {
		t.Fatalf("Append err: %v", err)
	}

	ok, err := svc.Delete(ctx, "missing")
	if err != nil {
		t.Fatalf("Delete err: %v", err)
	}
	if ok {
		t.Fatal("delete of missing id should report false")
	}
	if svc.Stats(ctx).TotalMessages != 1 {
		t.Fatal("failed delete must not alter count")
	}

	ok, err = svc.Delete(ctx, msg.ID)
	if err != nil {
		t.Fatalf("Delete err: %v", err)
	}
	if !ok {
		t.Fatal("expected delete to succeed")
	}
	if svc.Stats(ctx).TotalMessages != 0 {
		t.Fatal("count should decrease by one")
	}
}

func TestClearAndStats(t *testing.T) {
	svc := newService(t, 50)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Append(ctx, "q", "a", nil); err != nil {
			t.Fatalf("Append err: %v", err)
		}
	}

	stats := svc.Stats(ctx)
	if stats.TotalMessages != 3 || stats.OldestMessage == nil || stats.NewestMessage == nil {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	removed, err := svc.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear err: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}

	stats = svc.Stats(ctx)
	if stats.TotalMessages != 0 || stats.OldestMessage != nil || stats.NewestMessage != nil {
		t.Fatalf("stats after clear should be empty: %+v", stats)
	}
}

func TestConcurrentAppends(t *testing.T) {
	svc := newService(t, 50)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := svc.Append(ctx, fmt.Sprintf("concurrent-%d", i), "a", nil); err != nil {
				t.Errorf("Append err: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if count := svc.Stats(ctx).TotalMessages; count != 2 {
		t.Fatalf("expected both appends retained, got %d", count)
	}
}

// flakyStorage accepts failAfter saves and fails afterwards.
type flakyStorage struct {
	saves     int
	failAfter int
}

func (f *flakyStorage) Load() ([]chat.Message, error) { return nil, nil }

func (f *flakyStorage) Save(messages []chat.Message) error {
	f.saves++
	if f.saves > f.failAfter {
		return errors.New("disk full")
	}
	return nil
}

func TestAppendRollsBackOnPersistenceFailure(t *testing.T) {
	store := &flakyStorage{failAfter: 1}
	svc, err := history.NewService(store, 50)
	if err != nil {
		t.Fatalf("NewService err: %v", err)
	}
	ctx := context.Background()

	if _, err := svc.Append(ctx, "first", "a", nil); err != nil {
		t.Fatalf("first Append err: %v", err)
	}

	_, err = svc.Append(ctx, "second", "a", nil)
	if !errors.Is(err, history.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}

	messages := svc.List(ctx, 10)
	if len(messages) != 1 || messages[0].Question != "first" {
		t.Fatalf("failed append leaked into state: %+v", messages)
	}
}
