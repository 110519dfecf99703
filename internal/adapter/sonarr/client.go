// Package sonarr notifies a Sonarr instance that an episode landed on
// disk so the library picks it up without waiting for a scheduled scan.
package sonarr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/showsaver/internal/infrastructure/logger"
	"github.com/bnema/showsaver/internal/port"
)

type Client struct {
	baseURL   string
	apiKey    string
	overrides map[string]string
	http      *http.Client
}

// New builds a client. An empty baseURL or apiKey disables the
// integration entirely. overrides is the same series-name override table
// the placement step uses, so catalog naming and on-disk naming agree.
func New(baseURL, apiKey string, overrides map[string]string) *Client {
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		apiKey:    apiKey,
		overrides: overrides,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Enabled() bool {
	return c.baseURL != "" && c.apiKey != ""
}

type series struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// RescanSeries looks the series up by name and triggers a rescan
// command. The override name is tried first, then the original, both
// case-insensitively.
func (c *Client) RescanSeries(ctx context.Context, showName string) error {
	id, err := c.findSeries(ctx, showName)
	if err != nil {
		return err
	}
	if id == 0 {
		return fmt.Errorf("series %q not found in library", showName)
	}

	payload, err := json.Marshal(map[string]any{
		"name":     "RescanSeries",
		"seriesId": id,
	})
	if err != nil {
		return fmt.Errorf("encode rescan command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v3/command", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build rescan request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("rescan command: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 300 {
		return fmt.Errorf("rescan command: unexpected status %d", resp.StatusCode)
	}

	logger.Info.Printf("triggered rescan for series %s (id=%d)", logger.SanitizeForLog(showName), id)
	return nil
}

func (c *Client) findSeries(ctx context.Context, showName string) (int64, error) {
	all, err := c.listSeries(ctx)
	if err != nil {
		return 0, err
	}

	searchName := showName
	if override, ok := c.overrides[showName]; ok {
		searchName = override
	}

	if id := matchTitle(all, searchName); id != 0 {
		return id, nil
	}
	// Override applied but absent from the library: fall back to the
	// original name.
	if searchName != showName {
		return matchTitle(all, showName), nil
	}
	return 0, nil
}

func (c *Client) listSeries(ctx context.Context) ([]series, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v3/series", nil)
	if err != nil {
		return nil, fmt.Errorf("build series request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list series: unexpected status %d", resp.StatusCode)
	}

	var all []series
	if err := json.NewDecoder(resp.Body).Decode(&all); err != nil {
		return nil, fmt.Errorf("decode series list: %w", err)
	}
	return all, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
}

func matchTitle(all []series, name string) int64 {
	for _, s := range all {
		if strings.EqualFold(s.Title, name) {
			return s.ID
		}
	}
	return 0
}

var _ port.LibraryNotifier = (*Client)(nil)
