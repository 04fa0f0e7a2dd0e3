package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/indexnow"
)

// Ensure StateService implements indexnow.StateStore.
var _ indexnow.StateStore = (*StateService)(nil)

// StateService implements indexnow.StateStore using a single-row table.
type StateService struct {
	db *DB
}

// NewStateService creates a new StateService.
func NewStateService(db *DB) *StateService {
	return &StateService{db: db}
}

// ClaimSubmit reserves the submit slot inside a write transaction so that
// concurrent processes observe each other's lease.
func (s *StateService) ClaimSubmit(ctx context.Context, now time.Time, minInterval, lease time.Duration) (bool, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var lastSubmit, leaseUntil int64
	err = tx.QueryRowContext(ctx, `
		SELECT last_submit_at, lease_until FROM submit_state WHERE id = 1
	`).Scan(&lastSubmit, &leaseUntil)
	if err != nil {
		return false, fmt.Errorf("failed to read submit state: %w", err)
	}

	if now.UnixNano() < leaseUntil {
		return false, nil
	}
	if !indexnow.AllowGeneralSubmit(now, fromUnixNano(lastSubmit), minInterval) {
		return false, nil
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE submit_state SET lease_until = ? WHERE id = 1
	`, now.Add(lease).UnixNano())
	if err != nil {
		return false, fmt.Errorf("failed to store lease: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit claim: %w", err)
	}
	return true, nil
}

// ReleaseSubmit drops the lease and, on success, advances the submit clock.
func (s *StateService) ReleaseSubmit(ctx context.Context, now time.Time, success bool) error {
	query := `UPDATE submit_state SET lease_until = 0 WHERE id = 1`
	var args []any
	if success {
		query = `UPDATE submit_state SET lease_until = 0, last_submit_at = ? WHERE id = 1`
		args = append(args, toUnixNano(now))
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to release lease: %w", err)
	}
	return nil
}

// ResetSubmitClock forgets the last successful submit time.
func (s *StateService) ResetSubmitClock(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE submit_state SET last_submit_at = 0 WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to reset submit clock: %w", err)
	}
	return nil
}

// LastSubmitAt returns the last successful submit time.
func (s *StateService) LastSubmitAt(ctx context.Context) (time.Time, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT last_submit_at FROM submit_state WHERE id = 1`).Scan(&n)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read submit clock: %w", err)
	}
	return fromUnixNano(n), nil
}

// ClaimSitemap records now as the last sitemap submission if the cooldown has passed.
func (s *StateService) ClaimSitemap(ctx context.Context, now time.Time, cooldown time.Duration) (bool, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var last int64
	err = tx.QueryRowContext(ctx, `SELECT last_sitemap_at FROM submit_state WHERE id = 1`).Scan(&last)
	if err != nil {
		return false, fmt.Errorf("failed to read sitemap clock: %w", err)
	}
	if last != 0 && !indexnow.AllowSitemapSubmit(now, fromUnixNano(last), cooldown) {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `UPDATE submit_state SET last_sitemap_at = ? WHERE id = 1`, toUnixNano(now)); err != nil {
		return false, fmt.Errorf("failed to store sitemap clock: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit sitemap claim: %w", err)
	}
	return true, nil
}

// SetResult overwrites the stored result.
func (s *StateService) SetResult(ctx context.Context, r *indexnow.ResultRecord) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE submit_state SET result = ? WHERE id = 1`, string(data)); err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}
	return nil
}

// Result returns the stored result or ENOTFOUND.
func (s *StateService) Result(ctx context.Context) (*indexnow.ResultRecord, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT result FROM submit_state WHERE id = 1`).Scan(&data)
	if err != nil {
		return nil, fmt.Errorf("failed to read result: %w", err)
	}
	if data == "" {
		return nil, indexnow.Errorf(indexnow.ENOTFOUND, "no submission recorded")
	}

	var r indexnow.ResultRecord
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return &r, nil
}

// PurgeState resets the clocks, lease and result.
func (s *StateService) PurgeState(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE submit_state
		SET last_submit_at = 0, lease_until = 0, last_sitemap_at = 0, result = ''
		WHERE id = 1
	`)
	if err != nil {
		return fmt.Errorf("failed to purge state: %w", err)
	}
	return nil
}
