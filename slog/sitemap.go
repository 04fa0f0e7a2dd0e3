// Package slog provides log/slog decorators for indexnow services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/indexnow"
)

// Ensure LoggingSitemapService implements indexnow.SitemapService.
var _ indexnow.SitemapService = (*LoggingSitemapService)(nil)

// LoggingSitemapService wraps a SitemapService with debug logging.
type LoggingSitemapService struct {
	next   indexnow.SitemapService
	logger *slog.Logger
}

// NewLoggingSitemapService creates a new LoggingSitemapService.
func NewLoggingSitemapService(next indexnow.SitemapService, logger *slog.Logger) *LoggingSitemapService {
	return &LoggingSitemapService{next: next, logger: logger}
}

// DiscoverURLs delegates to the wrapped service and logs the operation.
func (s *LoggingSitemapService) DiscoverURLs(ctx context.Context, cfg *indexnow.Config, filter *indexnow.URLFilter) (urls []string, err error) {
	defer func(begin time.Time) {
		s.logger.Info("sitemap discovery",
			"site", cfg.SiteURL,
			"sitemap", cfg.SitemapPath,
			"count", len(urls),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DiscoverURLs(ctx, cfg, filter)
}
