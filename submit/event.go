package submit

import (
	"context"

	"github.com/fwojciec/indexnow"
)

// HandleChange queues the URL of a changed resource and runs the sitemap side
// channel. It reports whether the URL was queued.
//
// Publish-type changes are queued only when the resource is, or just stopped
// being, published. Trash and delete changes are queued whatever the status.
// In all cases the resource type must be allowed by the config.
func (s *Service) HandleChange(ctx context.Context, ev indexnow.ChangeEvent) (bool, error) {
	if err := ev.Validate(); err != nil {
		return false, err
	}

	cfg, err := s.Config(ctx)
	if err != nil {
		return false, err
	}
	if !cfg.Enabled || !cfg.AllowsResourceType(ev.Type) || !qualifies(ev) {
		return false, nil
	}
	if _, ok := indexnow.NormalizeURL(ev.URL); !ok {
		return false, nil
	}

	if err := s.enqueue(ctx, cfg, ev.URL); err != nil {
		return false, err
	}
	if _, err := s.submitSitemap(ctx, cfg); err != nil {
		return true, err
	}
	return true, nil
}

func qualifies(ev indexnow.ChangeEvent) bool {
	if ev.Removal() {
		return true
	}
	if ev.Kind == indexnow.ChangeUnpublished && ev.PreviousStatus == "" {
		return true
	}
	return ev.Status == indexnow.StatusPublish || ev.PreviousStatus == indexnow.StatusPublish
}
