package indexnow

import (
	"context"
	"time"
)

// SubmitTimeout bounds every outbound request made by the core.
const SubmitTimeout = 5 * time.Second

// ContentTypeJSON is the content type of submission requests.
const ContentTypeJSON = "application/json; charset=utf-8"

// Response is the status and body of a completed HTTP exchange.
type Response struct {
	StatusCode int
	Body       []byte
}

// HTTPClient issues the outbound requests of the protocol.
// A non-nil error means no response was received (DNS, TLS, timeout, ...).
// Non-2xx responses are not errors.
type HTTPClient interface {
	// PostJSON POSTs body with ContentTypeJSON to url.
	PostJSON(ctx context.Context, url string, body []byte) (*Response, error)

	// Get fetches url.
	Get(ctx context.Context, url string) (*Response, error)
}
