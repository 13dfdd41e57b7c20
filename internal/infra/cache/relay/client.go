// Package relay posts digest summaries to the skyviewer cache cloud
// function, which fronts the shared Redis instance.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/skyviewer/nightlydigest-stats/internal/domain/digest"
)

// Client writes cache entries over HTTP. The endpoint and bearer token come
// from the per-request configuration.
type Client struct {
	httpClient *http.Client
}

// NewClient builds a cache relay client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Store delivers one entry and returns the relay's response body. Errors
// surface to the caller; the domain layer decides they are best-effort.
func (c *Client) Store(ctx context.Context, cfg digest.CacheConfig, entry digest.Entry) ([]byte, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("marshal cache entry: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build cache request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cache request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("read cache response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("cache request error: status=%d body=%s", resp.StatusCode, string(body))
	}
	return body, nil
}

var _ digest.CacheWriter = (*Client)(nil)
