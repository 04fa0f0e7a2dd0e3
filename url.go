package indexnow

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// NormalizeURL validates raw as an absolute http(s) URL and returns its
// canonical form: lowercase scheme and host, IDNA hosts converted to ASCII,
// fragment removed. The bool result is false if raw is not acceptable.
func NormalizeURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if u.Hostname() == "" || u.User != nil {
		return "", false
	}

	host, err := idna.Lookup.ToASCII(strings.ToLower(u.Hostname()))
	if err != nil {
		return "", false
	}
	if port := u.Port(); port != "" {
		host = host + ":" + port
	}
	u.Host = host
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), true
}

// NormalizeURLs normalizes and deduplicates urls, preserving first-seen order.
// Invalid URLs are dropped.
func NormalizeURLs(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, raw := range urls {
		u, ok := NormalizeURL(raw)
		if !ok || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

// Host returns the hostname of the configured site, or "" if none is set.
func (c *Config) Host() string {
	if c.SiteURL == "" {
		return ""
	}
	u, err := url.Parse(c.SiteURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// KeyLocationURL returns the URL at which the key file must be readable:
// the configured override, or <site-origin>/<key>.txt.
func (c *Config) KeyLocationURL() string {
	if c.KeyLocation != "" {
		return c.KeyLocation
	}
	if c.SiteURL == "" || c.Key == "" {
		return ""
	}
	return c.SiteURL + "/" + url.PathEscape(c.Key) + ".txt"
}

// SitemapURL returns the absolute sitemap URL for the site, or "" if no site is set.
func (c *Config) SitemapURL() string {
	if c.SiteURL == "" {
		return ""
	}
	return c.SiteURL + c.SitemapPath
}

// Payload is the JSON body POSTed to an IndexNow endpoint.
type Payload struct {
	Host        string   `json:"host"`
	Key         string   `json:"key"`
	KeyLocation string   `json:"keyLocation"`
	URLList     []string `json:"urlList"`
}
