package indexnow

import (
	"context"
	"time"
)

const (
	// MaxQueueSize bounds the number of pending URLs. Oldest entries are
	// evicted first.
	MaxQueueSize = 500

	// QueueTTL is how long a durable queue entry stays pending without being
	// refreshed.
	QueueTTL = 6 * time.Hour
)

// QueueEntry is a URL waiting to be submitted.
type QueueEntry struct {
	URL        string    `json:"url"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

// QueueStore persists pending URLs. Every method is atomic with respect to
// concurrent callers; implementations must not lose distinct URLs when Put is
// called concurrently.
type QueueStore interface {
	// Put inserts the entry or refreshes its timestamp if the URL is already
	// queued, then evicts the oldest entries beyond capacity. ttl <= 0 means
	// entries never expire.
	Put(ctx context.Context, entry QueueEntry, capacity int, ttl time.Duration) error

	// List returns up to limit entries, oldest-enqueued first.
	// A limit <= 0 returns all entries.
	List(ctx context.Context, limit int) ([]*QueueEntry, error)

	// Remove deletes exactly the given URLs. Unknown URLs are ignored.
	Remove(ctx context.Context, urls []string) error

	// Count returns the number of pending entries.
	Count(ctx context.Context) (int, error)

	// Clear removes every entry.
	Clear(ctx context.Context) error
}
