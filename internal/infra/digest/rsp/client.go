// Package rsp queries the nightly digest API served by the Rubin Science
// Platform.
package rsp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/skyviewer/nightlydigest-stats/internal/domain/digest"
)

// Client fetches exposure digests for day-obs windows. The endpoint and
// token arrive per call so that per-request configuration stays in charge.
type Client struct {
	httpClient *http.Client
}

// NewClient builds an API client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchRange retrieves the digest for the half-open window
// [startDate, endDate). Transport failures and non-2xx statuses propagate
// untouched; there is no retry here.
func (c *Client) FetchRange(ctx context.Context, cfg digest.UpstreamConfig, startDate, endDate string) (digest.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.Endpoint, nil)
	if err != nil {
		return digest.Response{}, fmt.Errorf("build digest request: %w", err)
	}

	query := req.URL.Query()
	query.Set("instrument", cfg.Instrument)
	query.Set("dayObsStart", startDate)
	query.Set("dayObsEnd", endDate)
	req.URL.RawQuery = query.Encode()
	req.Header.Set("Authorization", "Bearer "+cfg.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return digest.Response{}, fmt.Errorf("digest request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return digest.Response{}, fmt.Errorf("digest request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return digest.Response{}, fmt.Errorf("read digest response: %w", err)
	}

	var raw digest.Response
	if err := json.Unmarshal(body, &raw); err != nil {
		return digest.Response{}, fmt.Errorf("decode digest response: %w", err)
	}
	return raw, nil
}

var _ digest.UpstreamClient = (*Client)(nil)
