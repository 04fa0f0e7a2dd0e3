package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/indexnow"
)

// Ensure QueueService implements indexnow.QueueStore.
var _ indexnow.QueueStore = (*QueueService)(nil)

// QueueService implements indexnow.QueueStore using SQLite.
type QueueService struct {
	db *DB
}

// NewQueueService creates a new QueueService.
func NewQueueService(db *DB) *QueueService {
	return &QueueService{db: db}
}

// Put inserts or refreshes entry and evicts the oldest entries beyond capacity.
// A refreshed entry counts as the most recently enqueued.
func (s *QueueService) Put(ctx context.Context, entry indexnow.QueueEntry, capacity int, ttl time.Duration) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.db.now()
	if err := expire(ctx, tx, now); err != nil {
		return err
	}

	var expiresAt int64
	if ttl > 0 {
		expiresAt = now.Add(ttl).UnixNano()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO queue (url, seq, enqueued_at, expires_at)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM queue), ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			seq = excluded.seq,
			enqueued_at = excluded.enqueued_at,
			expires_at = excluded.expires_at
	`, entry.URL, toUnixNano(entry.EnqueuedAt), expiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert queue entry: %w", err)
	}

	if capacity > 0 {
		_, err = tx.ExecContext(ctx, `
			DELETE FROM queue WHERE url IN (
				SELECT url FROM queue ORDER BY seq DESC LIMIT -1 OFFSET ?
			)
		`, capacity)
		if err != nil {
			return fmt.Errorf("failed to trim queue: %w", err)
		}
	}

	return tx.Commit()
}

// List returns up to limit entries, oldest first.
func (s *QueueService) List(ctx context.Context, limit int) ([]*indexnow.QueueEntry, error) {
	var query strings.Builder
	args := []any{s.db.now().UnixNano()}

	query.WriteString(`
		SELECT url, enqueued_at FROM queue
		WHERE expires_at = 0 OR expires_at > ?
		ORDER BY seq ASC
	`)
	appendPagination(&query, &args, limit, 0)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query queue: %w", err)
	}
	defer rows.Close()

	var entries []*indexnow.QueueEntry
	for rows.Next() {
		var e indexnow.QueueEntry
		var enqueuedAt int64
		if err := rows.Scan(&e.URL, &enqueuedAt); err != nil {
			return nil, fmt.Errorf("failed to scan queue entry: %w", err)
		}
		e.EnqueuedAt = fromUnixNano(enqueuedAt)
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate queue: %w", err)
	}

	return entries, nil
}

// Remove deletes exactly the given URLs.
func (s *QueueService) Remove(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, u := range urls {
		if _, err := tx.ExecContext(ctx, `DELETE FROM queue WHERE url = ?`, u); err != nil {
			return fmt.Errorf("failed to remove queue entry: %w", err)
		}
	}

	return tx.Commit()
}

// Count returns the number of unexpired entries.
func (s *QueueService) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM queue WHERE expires_at = 0 OR expires_at > ?
	`, s.db.now().UnixNano()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count queue: %w", err)
	}
	return n, nil
}

// Clear removes every entry.
func (s *QueueService) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM queue`); err != nil {
		return fmt.Errorf("failed to clear queue: %w", err)
	}
	return nil
}

func expire(ctx context.Context, tx *sql.Tx, now time.Time) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM queue WHERE expires_at > 0 AND expires_at <= ?`, now.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to expire queue entries: %w", err)
	}
	return nil
}
