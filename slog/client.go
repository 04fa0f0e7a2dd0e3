package slog

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/fwojciec/indexnow"
)

// Ensure LoggingClient implements indexnow.HTTPClient.
var _ indexnow.HTTPClient = (*LoggingClient)(nil)

// LoggingClient wraps an HTTPClient with request logging. Only the target
// host is logged: request bodies and key file paths carry the shared key.
type LoggingClient struct {
	next   indexnow.HTTPClient
	logger *slog.Logger
}

// NewLoggingClient creates a new LoggingClient.
func NewLoggingClient(next indexnow.HTTPClient, logger *slog.Logger) *LoggingClient {
	return &LoggingClient{next: next, logger: logger}
}

// PostJSON delegates to the wrapped client and logs the exchange.
func (c *LoggingClient) PostJSON(ctx context.Context, target string, body []byte) (resp *indexnow.Response, err error) {
	defer func(begin time.Time) {
		c.log("POST", target, len(body), resp, begin, err)
	}(time.Now())
	return c.next.PostJSON(ctx, target, body)
}

// Get delegates to the wrapped client and logs the exchange.
func (c *LoggingClient) Get(ctx context.Context, target string) (resp *indexnow.Response, err error) {
	defer func(begin time.Time) {
		c.log("GET", target, 0, resp, begin, err)
	}(time.Now())
	return c.next.Get(ctx, target)
}

func (c *LoggingClient) log(method, target string, sent int, resp *indexnow.Response, begin time.Time, err error) {
	attrs := []any{
		"method", method,
		"host", hostOf(target),
		"sent", sent,
		"duration", time.Since(begin),
	}
	if resp != nil {
		attrs = append(attrs, "status", resp.StatusCode, "bytes", len(resp.Body))
	}
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		c.logger.Warn("http request", append(attrs, "err", err)...)
		return
	}
	c.logger.Debug("http request", attrs...)
}

func hostOf(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return ""
	}
	return u.Host
}
