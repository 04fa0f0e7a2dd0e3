package submit

import (
	"context"
	"fmt"

	"github.com/fwojciec/indexnow"
)

// SubmitSitemap submits the site's sitemap URL on its own, outside the queue
// and the general rate limiter. It runs at most once per SitemapCooldown; the
// cooldown starts even if the submission fails. It returns nil if sitemap
// submission is disabled or still cooling down.
func (s *Service) SubmitSitemap(ctx context.Context) (*indexnow.ResultRecord, error) {
	cfg, err := s.Config(ctx)
	if err != nil {
		return nil, err
	}
	return s.submitSitemap(ctx, cfg)
}

func (s *Service) submitSitemap(ctx context.Context, cfg *indexnow.Config) (*indexnow.ResultRecord, error) {
	if !cfg.Enabled || !cfg.SubmitSitemap {
		return nil, nil
	}
	sitemapURL := cfg.SitemapURL()
	if sitemapURL == "" {
		return nil, nil
	}

	ok, err := s.State.ClaimSitemap(ctx, s.now(), indexnow.SitemapCooldown)
	if err != nil {
		return nil, fmt.Errorf("failed to claim sitemap slot: %w", err)
	}
	if !ok {
		return nil, nil
	}

	rec := s.SubmitURLs(ctx, cfg, []string{sitemapURL})
	if !rec.OK && cfg.Debug {
		s.logger().Warn("sitemap submit failed", "code", rec.ErrorCode, "status", rec.Status)
	}
	if err := s.State.SetResult(context.WithoutCancel(ctx), rec); err != nil {
		return nil, fmt.Errorf("failed to store result: %w", err)
	}
	return rec, nil
}
