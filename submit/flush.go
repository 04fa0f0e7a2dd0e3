package submit

import (
	"context"
	"errors"
	"fmt"

	"github.com/fwojciec/indexnow"
)

// Flush makes one attempt to deliver the oldest queued URLs.
//
// Concurrent calls within the process share a single attempt, which runs
// detached from any one caller's cancellation. Outbound requests are still
// bounded by SubmitTimeout. Across
// processes, the StateStore claim ensures at most one attempt dispatches per
// rate-limit window; a flush that loses the claim returns FlushDeferred
// without waiting.
//
// The returned error is reserved for storage failures. Delivery failures are
// reported through FlushResult.Record.
func (s *Service) Flush(ctx context.Context) (*indexnow.FlushResult, error) {
	v, err, _ := s.flights.Do(indexnow.TaskFlush, func() (any, error) {
		return s.flush(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	return v.(*indexnow.FlushResult), nil
}

// ForceFlush forgets the last successful submit time and flushes. A submit
// already in flight still wins.
func (s *Service) ForceFlush(ctx context.Context) (*indexnow.FlushResult, error) {
	if err := s.State.ResetSubmitClock(ctx); err != nil {
		return nil, fmt.Errorf("failed to reset submit clock: %w", err)
	}
	return s.Flush(ctx)
}

func (s *Service) flush(ctx context.Context) (*indexnow.FlushResult, error) {
	cfg, err := s.Config(ctx)
	if err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		return &indexnow.FlushResult{State: indexnow.FlushIdle}, nil
	}

	n, err := s.Queue.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count queue: %w", err)
	}
	if n == 0 {
		return &indexnow.FlushResult{State: indexnow.FlushIdle}, nil
	}

	ok, err := s.State.ClaimSubmit(ctx, s.now(), cfg.MinInterval(), indexnow.SubmitLease)
	if err != nil {
		return nil, fmt.Errorf("failed to claim submit slot: %w", err)
	}
	if !ok {
		// Leave the queue alone; a later trigger picks it up.
		if err := s.ensureFallback(ctx); err != nil {
			return nil, err
		}
		return &indexnow.FlushResult{State: indexnow.FlushDeferred}, nil
	}

	// The claim is held across the network call. Bookkeeping after it must
	// run even if the caller goes away.
	bctx := context.WithoutCancel(ctx)

	entries, err := s.Queue.List(ctx, cfg.MaxURLsPerSubmit)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to list queue: %w", err), s.State.ReleaseSubmit(bctx, s.now(), false))
	}
	if len(entries) == 0 {
		return &indexnow.FlushResult{State: indexnow.FlushIdle}, s.State.ReleaseSubmit(bctx, s.now(), false)
	}

	batch := make([]string, len(entries))
	for i, e := range entries {
		batch[i] = e.URL
	}

	rec := s.SubmitURLs(ctx, cfg, batch)
	res := &indexnow.FlushResult{URLs: batch, Record: rec}

	if rec.OK {
		res.State = indexnow.FlushSucceeded
		if err := s.Drain(bctx, batch); err != nil {
			return nil, errors.Join(fmt.Errorf("failed to drain queue: %w", err), s.State.ReleaseSubmit(bctx, s.now(), true))
		}
		if err := s.State.ReleaseSubmit(bctx, s.now(), true); err != nil {
			return nil, fmt.Errorf("failed to release submit slot: %w", err)
		}
	} else {
		res.State = indexnow.FlushFailed
		if err := s.State.ReleaseSubmit(bctx, s.now(), false); err != nil {
			return nil, fmt.Errorf("failed to release submit slot: %w", err)
		}
		// Batches that can never be sent are dropped regardless of policy.
		if cfg.OnFailure == indexnow.DiscardOnFailure || rec.ErrorCode == indexnow.ENOVALIDURLS {
			if err := s.Drain(bctx, batch); err != nil {
				return nil, fmt.Errorf("failed to drain queue: %w", err)
			}
		}
	}

	if err := s.State.SetResult(bctx, rec); err != nil {
		return nil, fmt.Errorf("failed to store result: %w", err)
	}

	if rec.OK && len(entries) < n {
		if err := s.ensureFallback(bctx); err != nil {
			return nil, err
		}
	}
	return res, nil
}
