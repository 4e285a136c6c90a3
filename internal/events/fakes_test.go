package events

import (
	"context"
	"sync"
	"time"

	"github.com/Raj-kansagra/InstaFood/internal/cache"
	"github.com/Raj-kansagra/InstaFood/internal/domain"
	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type fakeReader struct {
	msgs chan kafka.Message

	mu        sync.Mutex
	fetched   int
	committed []kafka.Message
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	ch := make(chan kafka.Message, len(msgs))
	for _, m := range msgs {
		ch <- m
	}
	return &fakeReader{msgs: ch}
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.msgs:
		r.mu.Lock()
		r.fetched++
		r.mu.Unlock()
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error { return nil }

func (r *fakeReader) committedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

func (r *fakeReader) fetchCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fetched
}

type removeCall struct {
	userID     primitive.ObjectID
	productIDs []primitive.ObjectID
	placedAt   time.Time
}

type fakeStore struct {
	mu       sync.Mutex
	cleared  []primitive.ObjectID
	calls    []removeCall
	attempts int
	errs     []error // returned in order, then nil
}

func (s *fakeStore) RemoveOrderedItems(_ context.Context, userID primitive.ObjectID, productIDs []primitive.ObjectID, placedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return err
		}
	}
	s.cleared = append(s.cleared, userID)
	s.calls = append(s.calls, removeCall{userID: userID, productIDs: productIDs, placedAt: placedAt})
	return nil
}

func (s *fakeStore) attemptCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

func (s *fakeStore) clearedIDs() []primitive.ObjectID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]primitive.ObjectID(nil), s.cleared...)
}

type fakeCache struct {
	mu      sync.Mutex
	deleted []string
}

func (c *fakeCache) Get(context.Context, string) ([]domain.CartLine, error) {
	return nil, cache.ErrCacheMiss
}

func (c *fakeCache) Version(context.Context, string) (int64, error) { return 0, nil }

func (c *fakeCache) Set(context.Context, string, int64, []domain.CartLine) error { return nil }

func (c *fakeCache) Delete(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, userID)
	return nil
}
