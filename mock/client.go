package mock

import (
	"context"

	"github.com/fwojciec/indexnow"
)

var _ indexnow.HTTPClient = (*HTTPClient)(nil)

// HTTPClient is a mock implementation of indexnow.HTTPClient.
type HTTPClient struct {
	PostJSONFn func(ctx context.Context, url string, body []byte) (*indexnow.Response, error)
	GetFn      func(ctx context.Context, url string) (*indexnow.Response, error)
}

func (c *HTTPClient) PostJSON(ctx context.Context, url string, body []byte) (*indexnow.Response, error) {
	return c.PostJSONFn(ctx, url, body)
}

func (c *HTTPClient) Get(ctx context.Context, url string) (*indexnow.Response, error) {
	return c.GetFn(ctx, url)
}
