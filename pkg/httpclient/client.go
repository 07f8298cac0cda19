// Package httpclient wraps the resty HTTP client behind a small interface so
// fetch-heavy packages can be tested against fakes.
package httpclient

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultUserAgent identifies the digest crawler to the sites it visits.
const DefaultUserAgent = "Mozilla/5.0 (compatible; blogdigest/1.0)"

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// Response is the subset of an HTTP response the pipeline needs.
type Response interface {
	StatusCode() int
	Body() []byte
}

// Client issues GET requests with per-request headers.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}

type restyClient struct {
	rc *resty.Client
}

// NewRestyClient builds a Client with the given timeout and User-Agent. Empty
// arguments fall back to the package defaults.
func NewRestyClient(timeout time.Duration, userAgent string) Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	rc := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)

	return &restyClient{rc: rc}
}

// Default returns a Client tuned for sitemap and article fetching.
func Default() Client { return NewRestyClient(DefaultTimeout, DefaultUserAgent) }

func (c *restyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	req := c.rc.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}

	resp, err := req.Get(url)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
