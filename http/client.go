// Package http provides the net/http implementations of indexnow.HTTPClient
// and indexnow.SitemapService.
package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fwojciec/indexnow"
)

// DefaultTimeout is the default timeout for HTTP requests.
// Kept consistent with indexnow.SubmitTimeout.
const DefaultTimeout = indexnow.SubmitTimeout

// DefaultMaxBodySize bounds how much of a response body is read.
const DefaultMaxBodySize = 10 << 20

// DefaultUserAgent identifies outbound requests.
const DefaultUserAgent = "indexnow-go/1.0"

// Ensure Client implements indexnow.HTTPClient at compile time.
var _ indexnow.HTTPClient = (*Client)(nil)

// Client sends IndexNow requests over HTTP.
type Client struct {
	client      *http.Client
	timeout     time.Duration
	maxBodySize int64
	userAgent   string
	limiter     *HostLimiter
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRateLimit paces requests to rps per second per host.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		c.limiter = NewHostLimiter(rps)
	}
}

// WithMaxBodySize caps how many bytes of each response body are read.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		c.maxBodySize = n
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithHTTPClient replaces the underlying http.Client. Its Timeout is
// overwritten by the configured timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// NewClient creates a new Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		timeout:     DefaultTimeout,
		maxBodySize: DefaultMaxBodySize,
		userAgent:   DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.client == nil {
		c.client = &http.Client{}
	}
	c.client.Timeout = c.timeout

	return c
}

// PostJSON POSTs body to target with the JSON content type.
func (c *Client) PostJSON(ctx context.Context, target string, body []byte) (*indexnow.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", indexnow.ContentTypeJSON)
	return c.do(req)
}

// Get fetches target.
func (c *Client) Get(ctx context.Context, target string) (*indexnow.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*indexnow.Response, error) {
	if err := c.limiter.Wait(req.Context(), req.URL.Host); err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", redact(req.URL), err)
	}

	return &indexnow.Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// redact drops the query so keys passed as parameters never reach error text.
func redact(u *url.URL) string {
	cp := *u
	cp.RawQuery = ""
	return cp.String()
}
