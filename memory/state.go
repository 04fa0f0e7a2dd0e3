package memory

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/indexnow"
)

var _ indexnow.StateStore = (*StateStore)(nil)

// StateStore is an in-memory indexnow.StateStore.
type StateStore struct {
	mu          sync.Mutex
	lastSubmit  time.Time
	leaseUntil  time.Time
	lastSitemap time.Time
	result      *indexnow.ResultRecord
}

// NewStateStore returns an empty StateStore.
func NewStateStore() *StateStore {
	return &StateStore{}
}

// ClaimSubmit reserves the submit slot if the rate limiter allows it and no
// other lease is active.
func (s *StateStore) ClaimSubmit(_ context.Context, now time.Time, minInterval, lease time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Before(s.leaseUntil) {
		return false, nil
	}
	if !indexnow.AllowGeneralSubmit(now, s.lastSubmit, minInterval) {
		return false, nil
	}
	s.leaseUntil = now.Add(lease)
	return true, nil
}

// ReleaseSubmit drops the lease and, on success, advances the submit clock.
func (s *StateStore) ReleaseSubmit(_ context.Context, now time.Time, success bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.leaseUntil = time.Time{}
	if success {
		s.lastSubmit = now
	}
	return nil
}

// ResetSubmitClock forgets the last successful submit time.
func (s *StateStore) ResetSubmitClock(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSubmit = time.Time{}
	return nil
}

// LastSubmitAt returns the last successful submit time.
func (s *StateStore) LastSubmitAt(_ context.Context) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastSubmit, nil
}

// ClaimSitemap records now as the last sitemap submission if the cooldown has passed.
func (s *StateStore) ClaimSitemap(_ context.Context, now time.Time, cooldown time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lastSitemap.IsZero() && !indexnow.AllowSitemapSubmit(now, s.lastSitemap, cooldown) {
		return false, nil
	}
	s.lastSitemap = now
	return true, nil
}

// SetResult overwrites the stored result.
func (s *StateStore) SetResult(_ context.Context, r *indexnow.ResultRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *r
	s.result = &cp
	return nil
}

// Result returns the stored result or ENOTFOUND.
func (s *StateStore) Result(_ context.Context) (*indexnow.ResultRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result == nil {
		return nil, indexnow.Errorf(indexnow.ENOTFOUND, "no submission recorded")
	}
	cp := *s.result
	return &cp, nil
}

// PurgeState resets everything.
func (s *StateStore) PurgeState(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSubmit = time.Time{}
	s.leaseUntil = time.Time{}
	s.lastSitemap = time.Time{}
	s.result = nil
	return nil
}
