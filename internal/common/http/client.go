// internal/common/http/client.go
package http

import (
	"context"
	"net/http"
	"time"
)

// Client wraps a net/http client with a per-client timeout. Each geocoding
// strategy holds its own Client so a slow provider cannot stall the others.
type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	return c.httpClient.Do(req)
}
