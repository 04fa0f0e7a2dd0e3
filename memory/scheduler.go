package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fwojciec/indexnow"
)

var _ indexnow.Scheduler = (*Scheduler)(nil)

// Scheduler holds one-shot named tasks in memory.
type Scheduler struct {
	mu    sync.Mutex
	tasks map[string]time.Time
}

// NewScheduler returns a Scheduler with nothing scheduled.
func NewScheduler() *Scheduler {
	return &Scheduler{tasks: make(map[string]time.Time)}
}

// Ensure schedules name at at unless it is already scheduled.
func (s *Scheduler) Ensure(_ context.Context, name string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[name]; !ok {
		s.tasks[name] = at
	}
	return nil
}

// Clear unschedules name.
func (s *Scheduler) Clear(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tasks, name)
	return nil
}

// ClaimDue removes and returns the tasks due at now, earliest first.
func (s *Scheduler) ClaimDue(_ context.Context, now time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []string
	for name, at := range s.tasks {
		if !at.After(now) {
			due = append(due, name)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return s.tasks[due[i]].Before(s.tasks[due[j]])
	})
	for _, name := range due {
		delete(s.tasks, name)
	}
	return due, nil
}
