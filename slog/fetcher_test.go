package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/siterag"
	"github.com/fwojciec/siterag/mock"
	siteslog "github.com/fwojciec/siterag/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDebugLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLoggingFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("logs fetch with status, bytes and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (*siterag.Page, error) {
				return &siterag.Page{URL: url, StatusCode: 200, Content: "<html>content</html>"}, nil
			},
		}

		fetcher := siteslog.NewLoggingFetcher(inner, newDebugLogger(&buf))
		page, err := fetcher.Fetch(context.Background(), "https://friscomasjid.org/events")

		require.NoError(t, err)
		assert.Equal(t, "<html>content</html>", page.Content)
		output := buf.String()
		assert.Contains(t, output, "msg=fetch")
		assert.Contains(t, output, "url=https://friscomasjid.org/events")
		assert.Contains(t, output, "status=200")
		assert.Contains(t, output, "bytes=20")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (*siterag.Page, error) {
				return nil, errors.New("network error")
			},
		}

		fetcher := siteslog.NewLoggingFetcher(inner, newDebugLogger(&buf))
		_, err := fetcher.Fetch(context.Background(), "https://friscomasjid.org/events")

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, "status=0")
		assert.Contains(t, output, "err=\"network error\"")
	})

	t.Run("silent above debug level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (*siterag.Page, error) {
				return &siterag.Page{URL: url}, nil
			},
		}

		_, err := siteslog.NewLoggingFetcher(inner, logger).Fetch(context.Background(), "https://friscomasjid.org/")

		require.NoError(t, err)
		assert.Empty(t, buf.String())
	})
}

func TestLoggingFetcher_Close(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	closeCalled := false
	inner := &mock.Fetcher{
		CloseFn: func() error {
			closeCalled = true
			return nil
		},
	}

	err := siteslog.NewLoggingFetcher(inner, newDebugLogger(&buf)).Close()

	require.NoError(t, err)
	assert.True(t, closeCalled)
}
