// Package probe implements the HEAD-request capability the URL corrector
// uses to test candidate season URLs.
package probe

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bnema/showsaver/internal/port"
)

type Client struct {
	http *http.Client
}

// NewClient builds a prober with a per-request timeout so one
// unreachable candidate cannot stall the whole season scan.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		http: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Head(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build probe request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("probe %s: %w", url, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	return resp.StatusCode, nil
}

var _ port.Prober = (*Client)(nil)
