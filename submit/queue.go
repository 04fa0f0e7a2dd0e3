package submit

import (
	"context"
	"fmt"

	"github.com/fwojciec/indexnow"
)

// Enqueue adds rawURL to the queue, or refreshes its timestamp if it is
// already pending. Invalid URLs are ignored, as is everything while
// submission is disabled. If a Scheduler is configured, a fallback flush is
// scheduled unless one is already pending.
func (s *Service) Enqueue(ctx context.Context, rawURL string) error {
	cfg, err := s.Config(ctx)
	if err != nil {
		return err
	}
	return s.enqueue(ctx, cfg, rawURL)
}

func (s *Service) enqueue(ctx context.Context, cfg *indexnow.Config, rawURL string) error {
	if !cfg.Enabled {
		return nil
	}
	u, ok := indexnow.NormalizeURL(rawURL)
	if !ok {
		return nil
	}

	now := s.now()
	entry := indexnow.QueueEntry{URL: u, EnqueuedAt: now.UTC()}
	if err := s.Queue.Put(ctx, entry, indexnow.MaxQueueSize, indexnow.QueueTTL); err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", u, err)
	}
	return s.ensureFallback(ctx)
}

// Drain removes exactly urls from the queue. It is called only after the
// endpoint accepted that exact batch.
func (s *Service) Drain(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	return s.Queue.Remove(ctx, urls)
}

// Count returns the number of pending URLs.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.Queue.Count(ctx)
}

// Clear empties the queue and cancels the pending fallback flush. It bypasses
// rate limiting and delivery.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.Queue.Clear(ctx); err != nil {
		return err
	}
	if s.Scheduler != nil {
		return s.Scheduler.Clear(ctx, indexnow.TaskFlush)
	}
	return nil
}
