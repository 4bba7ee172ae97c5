package crawl

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/siterag"
)

// RetryDelays returns n backoff delays doubling from one second: 1s, 2s, 4s...
func RetryDelays(n int) []time.Duration {
	delays := make([]time.Duration, n)
	d := time.Second
	for i := range delays {
		delays[i] = d
		d *= 2
	}
	return delays
}

// fetch fetches url once, then once more after each of c.RetryDelays while the
// fetch keeps failing. The last error is returned.
func (c *Crawler) fetch(ctx context.Context, url string, logger *slog.Logger) (*siterag.Page, error) {
	page, err := c.Fetcher.Fetch(ctx, url)
	for attempt, delay := range c.RetryDelays {
		if err == nil || ctx.Err() != nil {
			break
		}
		logger.Debug("retrying fetch", "url", url, "attempt", attempt+2, "err", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		page, err = c.Fetcher.Fetch(ctx, url)
	}
	return page, err
}
