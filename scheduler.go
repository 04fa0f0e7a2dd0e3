package indexnow

import (
	"context"
	"time"
)

// TaskFlush is the fallback task that drains the queue when no synchronous
// flush happened.
const TaskFlush = "indexnow_flush"

// FallbackDelay is how far in the future the fallback flush is scheduled.
const FallbackDelay = time.Minute

// Scheduler invokes named tasks later.
type Scheduler interface {
	// Ensure schedules name to run at the given time unless a pending run of
	// name already exists. It is idempotent.
	Ensure(ctx context.Context, name string, at time.Time) error

	// Clear removes any pending run of name.
	Clear(ctx context.Context, name string) error

	// ClaimDue atomically removes and returns the names of tasks due at now.
	// A task is returned to at most one caller.
	ClaimDue(ctx context.Context, now time.Time) ([]string, error)
}
