// scraper/archive_client.go
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// WaybackClient lists Internet Archive snapshots of a page using the
// timemap (link format) endpoint.
type WaybackClient struct {
	timemapURL string
	client     *http.Client
}

func NewWaybackClient(timemapURL string, timeout time.Duration) *WaybackClient {
	return &WaybackClient{
		timemapURL: timemapURL,
		client:     &http.Client{Timeout: timeout},
	}
}

// LookupSnapshots returns the HTTP status and raw timemap body for
// homepageURL. err is only set when no response was received.
func (c *WaybackClient) LookupSnapshots(ctx context.Context, homepageURL string) (int, string, error) {
	start := time.Now()
	defer func() {
		apiCallDurationSeconds.WithLabelValues(endpointWayback).Observe(time.Since(start).Seconds())
	}()

	// The homepage URL is appended as-is; the timemap endpoint expects it raw.
	memento := c.timemapURL + homepageURL
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, memento, nil)
	if err != nil {
		apiCallsTotal.WithLabelValues(endpointWayback, "failure").Inc()
		return 0, "", fmt.Errorf("failed to build timemap request %s: %w", memento, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		apiCallsTotal.WithLabelValues(endpointWayback, "failure").Inc()
		return 0, "", fmt.Errorf("failed to make GET request to %s: %w", memento, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		apiCallsTotal.WithLabelValues(endpointWayback, "failure").Inc()
		return resp.StatusCode, "", fmt.Errorf("failed to read timemap from %s: %w", memento, err)
	}

	if resp.StatusCode == http.StatusOK {
		apiCallsTotal.WithLabelValues(endpointWayback, "success").Inc()
	} else {
		apiCallsTotal.WithLabelValues(endpointWayback, "failure").Inc()
	}
	return resp.StatusCode, string(body), nil
}
