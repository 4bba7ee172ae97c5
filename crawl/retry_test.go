package crawl_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/siterag"
	"github.com/fwojciec/siterag/crawl"
	"github.com/fwojciec/siterag/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryDelays(t *testing.T) {
	t.Parallel()

	assert.Empty(t, crawl.RetryDelays(0))
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, crawl.RetryDelays(3))
}

func TestCrawler_Retry(t *testing.T) {
	t.Parallel()

	// flaky fails the first n fetches of every URL.
	flaky := func(n int) (*mock.Fetcher, map[string]int) {
		attempts := map[string]int{}
		return &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*siterag.Page, error) {
				attempts[url]++
				if attempts[url] <= n {
					return nil, siterag.Errorf(siterag.EFETCH, "HTTP 503 for %s", url)
				}
				return &siterag.Page{URL: url, StatusCode: 200}, nil
			},
		}, attempts
	}
	noLinks := &mock.LinkExtractor{
		ExtractLinksFn: func(string, string) ([]string, error) { return nil, nil },
	}
	seed := "https://friscomasjid.org/"

	t.Run("recovers within the retry budget", func(t *testing.T) {
		t.Parallel()

		fetcher, attempts := flaky(2)
		c := &crawl.Crawler{Fetcher: fetcher, Links: noLinks, RetryDelays: []time.Duration{0, 0}}

		result, err := c.Crawl(context.Background(), seed, nil)

		require.NoError(t, err)
		assert.Equal(t, []string{seed}, result.Visited)
		assert.Empty(t, result.Failures)
		assert.Equal(t, 3, attempts[seed])
	})

	t.Run("records the last error once retries run out", func(t *testing.T) {
		t.Parallel()

		fetcher, attempts := flaky(5)
		c := &crawl.Crawler{Fetcher: fetcher, Links: noLinks, RetryDelays: []time.Duration{0}}

		result, err := c.Crawl(context.Background(), seed, nil)

		require.NoError(t, err)
		assert.Empty(t, result.Visited)
		require.Len(t, result.Failures, 1)
		assert.Equal(t, siterag.EFETCH, siterag.ErrorCode(result.Failures[0].Err))
		assert.Equal(t, 2, attempts[seed])
	})

	t.Run("single attempt without delays", func(t *testing.T) {
		t.Parallel()

		fetcher, attempts := flaky(1)
		c := &crawl.Crawler{Fetcher: fetcher, Links: noLinks}

		result, err := c.Crawl(context.Background(), seed, nil)

		require.NoError(t, err)
		assert.Len(t, result.Failures, 1)
		assert.Equal(t, 1, attempts[seed])
	})
}
