// Package fetch downloads source images by URL for the upload-by-URL
// path.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	wbfretry "github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/imagestore/internal/retry"
)

// Downloader fetches a remote image with a bounded retry. Every attempt
// has its own timeout; a non-2xx status counts as a failed attempt.
type Downloader struct {
	client   *http.Client
	strategy wbfretry.Strategy
}

func NewDownloader(timeout time.Duration) *Downloader {
	return &Downloader{
		client:   &http.Client{Timeout: timeout},
		strategy: retry.FetchStrategy,
	}
}

// Fetch returns the response body bytes. The whole body is read before
// returning so a mid-stream failure surfaces here, not downstream.
func (d *Downloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	delay := d.strategy.Delay
	for attempt := 1; attempt <= d.strategy.Attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * d.strategy.Backoff)
		}

		data, err := d.fetchOnce(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err

		zlog.Logger.Warn().
			Err(err).
			Str("url", url).
			Int("attempt", attempt).
			Int("attempts", d.strategy.Attempts).
			Msg("source fetch attempt failed")
	}

	return nil, fmt.Errorf("fetch %s after %d attempts: %w", url, d.strategy.Attempts, lastErr)
}

func (d *Downloader) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}
