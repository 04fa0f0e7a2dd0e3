package submit

import (
	"context"
	"fmt"

	"github.com/fwojciec/indexnow"
)

// Status reports the queue size, the last successful submit time and the
// last recorded result.
func (s *Service) Status(ctx context.Context) (*indexnow.Status, error) {
	cfg, err := s.Config(ctx)
	if err != nil {
		return nil, err
	}
	n, err := s.Queue.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count queue: %w", err)
	}
	last, err := s.State.LastSubmitAt(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read submit clock: %w", err)
	}

	st := &indexnow.Status{Enabled: cfg.Enabled, Queue: n, LastSubmitAt: last}
	rec, err := s.State.Result(ctx)
	switch {
	case indexnow.ErrorCode(err) == indexnow.ENOTFOUND:
	case err != nil:
		return nil, fmt.Errorf("failed to read last result: %w", err)
	default:
		st.Last = rec
	}
	return st, nil
}
