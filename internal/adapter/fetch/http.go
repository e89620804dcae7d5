// Package fetch provides content fetchers for the ingestion workflow. Fetchers
// return an empty string plus an error on any failure; they never panic and
// never return partial content.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 10 << 20

// HTTPFetcher retrieves raw content over HTTP(S).
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a fetcher with the given per-request timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch performs a GET against the source URL and returns the response body.
func (f *HTTPFetcher) Fetch(ctx context.Context, sourceRef string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceRef, nil)
	if err != nil {
		return "", fmt.Errorf("invalid source url %q: %w", sourceRef, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch failed for %q: %w", sourceRef, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch failed for %q: status %d", sourceRef, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read body for %q: %w", sourceRef, err)
	}
	return string(body), nil
}
