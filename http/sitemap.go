package http

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/indexnow"
)

// MaxSitemapDepth bounds how deeply sitemap indexes are followed.
const MaxSitemapDepth = 3

// Ensure SitemapService implements indexnow.SitemapService.
var _ indexnow.SitemapService = (*SitemapService)(nil)

// SitemapService discovers URLs from a site's sitemaps.
type SitemapService struct {
	client indexnow.HTTPClient
}

// NewSitemapService creates a new SitemapService that fetches through client.
// If client is nil, a default Client is used.
func NewSitemapService(client indexnow.HTTPClient) *SitemapService {
	if client == nil {
		client = NewClient()
	}
	return &SitemapService{client: client}
}

// DiscoverURLs returns the page URLs listed in the site's sitemaps.
// Returns an empty slice (not nil) if no sitemaps are found.
func (s *SitemapService) DiscoverURLs(ctx context.Context, cfg *indexnow.Config, filter *indexnow.URLFilter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	site, ok := indexnow.NormalizeURL(cfg.SiteURL)
	if !ok {
		return nil, indexnow.Errorf(indexnow.EINVALIDSITE, "Site URL is not configured.")
	}
	base, _ := url.Parse(site)

	sitemapURLs, err := s.findSitemapURLs(ctx, cfg, base)
	if err != nil {
		return nil, err
	}

	d := &discovery{
		svc:          s,
		host:         base.Host,
		filter:       filter,
		seenSitemaps: make(map[string]bool),
		seenURLs:     make(map[string]bool),
		urls:         []string{},
	}
	for _, sitemapURL := range sitemapURLs {
		if err := d.processSitemap(ctx, sitemapURL, 0); err != nil {
			return nil, err
		}
		if d.full() {
			break
		}
	}
	return d.urls, nil
}

// findSitemapURLs returns the configured sitemap if it exists, otherwise the
// Sitemap: directives of robots.txt.
func (s *SitemapService) findSitemapURLs(ctx context.Context, cfg *indexnow.Config, base *url.URL) ([]string, error) {
	sitemapURL := base.ResolveReference(&url.URL{Path: cfg.SitemapPath}).String()
	body, err := s.fetch(ctx, sitemapURL)
	if err == nil && len(body) > 0 {
		return []string{sitemapURL}, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	robotsURL := base.ResolveReference(&url.URL{Path: "/robots.txt"}).String()
	sitemaps, err := s.parseSitemapsFromRobots(ctx, robotsURL)
	if err != nil {
		// Propagate context errors, treat other errors as "not found"
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}
	return sitemaps, nil
}

// parseSitemapsFromRobots extracts Sitemap: directives from robots.txt.
func (s *SitemapService) parseSitemapsFromRobots(ctx context.Context, robotsURL string) ([]string, error) {
	body, err := s.fetch(ctx, robotsURL)
	if err != nil {
		return nil, err
	}

	var sitemaps []string
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(strings.ToLower(line), "sitemap:") {
			sitemapURL := strings.TrimSpace(line[len("sitemap:"):])
			if sitemapURL != "" {
				sitemaps = append(sitemaps, sitemapURL)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading robots.txt: %w", err)
	}

	return sitemaps, nil
}

// fetch returns the body of a 200 response.
func (s *SitemapService) fetch(ctx context.Context, target string) ([]byte, error) {
	resp, err := s.client.Get(ctx, target)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, target)
	}
	return resp.Body, nil
}

// discovery accumulates URLs across the sitemaps of one DiscoverURLs call.
type discovery struct {
	svc          *SitemapService
	host         string
	filter       *indexnow.URLFilter
	seenSitemaps map[string]bool
	seenURLs     map[string]bool
	urls         []string
}

func (d *discovery) full() bool {
	return len(d.urls) >= indexnow.MaxSitemapURLs
}

// processSitemap fetches and parses a sitemap, handling both urlset and sitemapindex.
func (d *discovery) processSitemap(ctx context.Context, sitemapURL string, depth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.seenSitemaps[sitemapURL] || depth > MaxSitemapDepth {
		return nil
	}
	d.seenSitemaps[sitemapURL] = true

	body, err := d.svc.fetch(ctx, sitemapURL)
	if err != nil {
		return err
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return fmt.Errorf("parsing sitemap XML: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return fmt.Errorf("empty sitemap XML")
	}

	if root.Tag == "sitemapindex" {
		for _, sitemap := range root.SelectElements("sitemap") {
			loc := sitemap.SelectElement("loc")
			if loc == nil {
				continue
			}
			child := strings.TrimSpace(loc.Text())
			if child == "" {
				continue
			}
			if err := d.processSitemap(ctx, child, depth+1); err != nil {
				return err
			}
			if d.full() {
				return nil
			}
		}
		return nil
	}

	for _, urlEl := range root.SelectElements("url") {
		loc := urlEl.SelectElement("loc")
		if loc == nil {
			continue
		}
		d.add(loc.Text())
		if d.full() {
			return nil
		}
	}
	return nil
}

// add records raw if it normalizes to a new URL on the site's host that
// passes the filter.
func (d *discovery) add(raw string) {
	u, ok := indexnow.NormalizeURL(raw)
	if !ok || d.seenURLs[u] {
		return
	}
	parsed, err := url.Parse(u)
	if err != nil || parsed.Host != d.host {
		return
	}
	if !d.filter.Match(u) {
		return
	}
	d.seenURLs[u] = true
	d.urls = append(d.urls, u)
}
