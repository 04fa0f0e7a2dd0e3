package mock

import (
	"context"
	"time"

	"github.com/fwojciec/indexnow"
)

var _ indexnow.Scheduler = (*Scheduler)(nil)

// Scheduler is a mock implementation of indexnow.Scheduler.
type Scheduler struct {
	EnsureFn   func(ctx context.Context, name string, at time.Time) error
	ClearFn    func(ctx context.Context, name string) error
	ClaimDueFn func(ctx context.Context, now time.Time) ([]string, error)
}

func (s *Scheduler) Ensure(ctx context.Context, name string, at time.Time) error {
	return s.EnsureFn(ctx, name, at)
}

func (s *Scheduler) Clear(ctx context.Context, name string) error {
	return s.ClearFn(ctx, name)
}

func (s *Scheduler) ClaimDue(ctx context.Context, now time.Time) ([]string, error) {
	return s.ClaimDueFn(ctx, now)
}
