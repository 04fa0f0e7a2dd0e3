package mock

import (
	"context"
	"time"

	"github.com/fwojciec/indexnow"
)

var _ indexnow.QueueStore = (*QueueStore)(nil)

// QueueStore is a mock implementation of indexnow.QueueStore.
type QueueStore struct {
	PutFn    func(ctx context.Context, entry indexnow.QueueEntry, capacity int, ttl time.Duration) error
	ListFn   func(ctx context.Context, limit int) ([]*indexnow.QueueEntry, error)
	RemoveFn func(ctx context.Context, urls []string) error
	CountFn  func(ctx context.Context) (int, error)
	ClearFn  func(ctx context.Context) error
}

func (s *QueueStore) Put(ctx context.Context, entry indexnow.QueueEntry, capacity int, ttl time.Duration) error {
	return s.PutFn(ctx, entry, capacity, ttl)
}

func (s *QueueStore) List(ctx context.Context, limit int) ([]*indexnow.QueueEntry, error) {
	return s.ListFn(ctx, limit)
}

func (s *QueueStore) Remove(ctx context.Context, urls []string) error {
	return s.RemoveFn(ctx, urls)
}

func (s *QueueStore) Count(ctx context.Context) (int, error) {
	return s.CountFn(ctx)
}

func (s *QueueStore) Clear(ctx context.Context) error {
	return s.ClearFn(ctx)
}
