package mock

import (
	"context"
	"time"

	"github.com/fwojciec/indexnow"
)

var _ indexnow.StateStore = (*StateStore)(nil)

// StateStore is a mock implementation of indexnow.StateStore.
type StateStore struct {
	ClaimSubmitFn      func(ctx context.Context, now time.Time, minInterval, lease time.Duration) (bool, error)
	ReleaseSubmitFn    func(ctx context.Context, now time.Time, success bool) error
	ResetSubmitClockFn func(ctx context.Context) error
	LastSubmitAtFn     func(ctx context.Context) (time.Time, error)
	ClaimSitemapFn     func(ctx context.Context, now time.Time, cooldown time.Duration) (bool, error)
	SetResultFn        func(ctx context.Context, r *indexnow.ResultRecord) error
	ResultFn           func(ctx context.Context) (*indexnow.ResultRecord, error)
	PurgeStateFn       func(ctx context.Context) error
}

func (s *StateStore) ClaimSubmit(ctx context.Context, now time.Time, minInterval, lease time.Duration) (bool, error) {
	return s.ClaimSubmitFn(ctx, now, minInterval, lease)
}

func (s *StateStore) ReleaseSubmit(ctx context.Context, now time.Time, success bool) error {
	return s.ReleaseSubmitFn(ctx, now, success)
}

func (s *StateStore) ResetSubmitClock(ctx context.Context) error {
	return s.ResetSubmitClockFn(ctx)
}

func (s *StateStore) LastSubmitAt(ctx context.Context) (time.Time, error) {
	return s.LastSubmitAtFn(ctx)
}

func (s *StateStore) ClaimSitemap(ctx context.Context, now time.Time, cooldown time.Duration) (bool, error) {
	return s.ClaimSitemapFn(ctx, now, cooldown)
}

func (s *StateStore) SetResult(ctx context.Context, r *indexnow.ResultRecord) error {
	return s.SetResultFn(ctx, r)
}

func (s *StateStore) Result(ctx context.Context) (*indexnow.ResultRecord, error) {
	return s.ResultFn(ctx)
}

func (s *StateStore) PurgeState(ctx context.Context) error {
	return s.PurgeStateFn(ctx)
}
