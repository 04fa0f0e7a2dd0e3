// Package memory provides in-process implementations of the indexnow stores.
// They back the ephemeral queue variant and hold nothing across restarts.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/fwojciec/indexnow"
)

var _ indexnow.QueueStore = (*QueueStore)(nil)

// QueueStore is an in-memory indexnow.QueueStore.
// It is safe for concurrent use by multiple goroutines.
type QueueStore struct {
	mu      sync.Mutex
	entries map[string]*queueItem
	seq     uint64

	// Now returns the current time used for expiry. Defaults to time.Now.
	Now func() time.Time
}

type queueItem struct {
	entry     indexnow.QueueEntry
	seq       uint64
	expiresAt time.Time
}

// NewQueueStore returns an empty QueueStore.
func NewQueueStore() *QueueStore {
	return &QueueStore{entries: make(map[string]*queueItem)}
}

func (s *QueueStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Put inserts or refreshes entry and evicts the oldest entries beyond capacity.
// A refreshed entry counts as the most recently enqueued.
func (s *QueueStore) Put(_ context.Context, entry indexnow.QueueEntry, capacity int, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expire()
	s.seq++
	item := &queueItem{entry: entry, seq: s.seq}
	if ttl > 0 {
		item.expiresAt = s.now().Add(ttl)
	}
	s.entries[entry.URL] = item

	if capacity > 0 && len(s.entries) > capacity {
		items := s.sorted()
		for _, it := range items[:len(items)-capacity] {
			delete(s.entries, it.entry.URL)
		}
	}
	return nil
}

// List returns up to limit entries, oldest first.
func (s *QueueStore) List(_ context.Context, limit int) ([]*indexnow.QueueEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expire()
	items := s.sorted()
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	out := make([]*indexnow.QueueEntry, len(items))
	for i, it := range items {
		e := it.entry
		out[i] = &e
	}
	return out, nil
}

// Remove deletes exactly the given URLs.
func (s *QueueStore) Remove(_ context.Context, urls []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range urls {
		delete(s.entries, u)
	}
	return nil
}

// Count returns the number of unexpired entries.
func (s *QueueStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expire()
	return len(s.entries), nil
}

// Clear removes every entry.
func (s *QueueStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.entries)
	return nil
}

// expire drops entries past their expiry. Callers must hold mu.
func (s *QueueStore) expire() {
	now := s.now()
	for u, it := range s.entries {
		if !it.expiresAt.IsZero() && !now.Before(it.expiresAt) {
			delete(s.entries, u)
		}
	}
}

// sorted returns the entries in enqueue order. Callers must hold mu.
func (s *QueueStore) sorted() []*queueItem {
	items := make([]*queueItem, 0, len(s.entries))
	for _, it := range s.entries {
		items = append(items, it)
	}
	slices.SortFunc(items, func(a, b *queueItem) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})
	return items
}
