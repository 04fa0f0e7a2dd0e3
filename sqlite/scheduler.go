package sqlite

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/fwojciec/indexnow"
)

// Ensure SchedulerService implements indexnow.Scheduler.
var _ indexnow.Scheduler = (*SchedulerService)(nil)

// SchedulerService keeps one-shot named tasks in the scheduled_tasks table.
type SchedulerService struct {
	db *DB
}

// NewSchedulerService creates a new SchedulerService.
func NewSchedulerService(db *DB) *SchedulerService {
	return &SchedulerService{db: db}
}

// Ensure schedules name at at unless it is already scheduled.
func (s *SchedulerService) Ensure(ctx context.Context, name string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scheduled_tasks (name, run_at) VALUES (?, ?)
		ON CONFLICT(name) DO NOTHING
	`, name, toUnixNano(at))
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	return nil
}

// Clear unschedules name.
func (s *SchedulerService) Clear(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM scheduled_tasks WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to clear %s: %w", name, err)
	}
	return nil
}

// ClaimDue deletes the due tasks and returns their names, earliest first.
// The delete is a single statement so each task is claimed once.
func (s *SchedulerService) ClaimDue(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		DELETE FROM scheduled_tasks WHERE run_at <= ? RETURNING name, run_at
	`, now.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("failed to claim due tasks: %w", err)
	}
	defer rows.Close()

	type task struct {
		name  string
		runAt int64
	}
	var tasks []task
	for rows.Next() {
		var t task
		if err := rows.Scan(&t.name, &t.runAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	slices.SortFunc(tasks, func(a, b task) int {
		switch {
		case a.runAt < b.runAt:
			return -1
		case a.runAt > b.runAt:
			return 1
		}
		return 0
	})
	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = t.name
	}
	return names, nil
}
