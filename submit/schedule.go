package submit

import (
	"context"
	"fmt"

	"github.com/fwojciec/indexnow"
)

// ensureFallback schedules TaskFlush unless one is already pending.
// Without a Scheduler it does nothing.
func (s *Service) ensureFallback(ctx context.Context) error {
	if s.Scheduler == nil {
		return nil
	}
	if err := s.Scheduler.Ensure(ctx, indexnow.TaskFlush, s.now().Add(indexnow.FallbackDelay)); err != nil {
		return fmt.Errorf("failed to schedule fallback flush: %w", err)
	}
	return nil
}

// RunDue claims the scheduled tasks that are due and runs them. It returns
// the results of the flushes it ran.
func (s *Service) RunDue(ctx context.Context) ([]*indexnow.FlushResult, error) {
	if s.Scheduler == nil {
		return nil, nil
	}
	names, err := s.Scheduler.ClaimDue(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to claim due tasks: %w", err)
	}

	var results []*indexnow.FlushResult
	for _, name := range names {
		switch name {
		case indexnow.TaskFlush:
			res, err := s.Flush(ctx)
			if err != nil {
				return results, err
			}
			results = append(results, res)
		default:
			s.logger().Warn("unknown scheduled task", "task", name)
		}
	}
	return results, nil
}
