package mock

import (
	"context"

	"github.com/fwojciec/indexnow"
)

var _ indexnow.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of indexnow.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, cfg *indexnow.Config, filter *indexnow.URLFilter) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, cfg *indexnow.Config, filter *indexnow.URLFilter) ([]string, error) {
	return s.DiscoverURLsFn(ctx, cfg, filter)
}
