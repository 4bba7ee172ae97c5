// Package rod provides a headless-browser siterag.Fetcher for sites that
// render their content with JavaScript.
package rod

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fwojciec/siterag"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds a single page load.
const DefaultFetchTimeout = 10 * time.Second

// Ensure Fetcher implements siterag.Fetcher at compile time.
var _ siterag.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	browser      *browser
	timeout      time.Duration
	recycleAfter int
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the timeout for a single page load.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithRecycleAfter sets how many pages a browser process serves before it
// is replaced. Zero disables recycling.
func WithRecycleAfter(n int) Option {
	return func(f *Fetcher) {
		f.recycleAfter = n
	}
}

// NewFetcher launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout:      DefaultFetchTimeout,
		recycleAfter: DefaultRecycleAfter,
	}
	for _, opt := range opts {
		opt(f)
	}

	b, err := newBrowser(f.recycleAfter)
	if err != nil {
		return nil, err
	}
	f.browser = b
	return f, nil
}

// Fetch navigates to the URL, waits for the load event and returns the
// rendered HTML. The status is that of the main document response.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*siterag.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, siterag.Errorf(siterag.EFETCH, "fetch %s: %v", url, err)
	}

	b := f.browser.acquire()
	if b == nil {
		return nil, siterag.Errorf(siterag.EINVALID, "fetcher is closed")
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, siterag.Errorf(siterag.EFETCH, "open page for %s: %v", url, err)
	}
	defer page.Close()
	page = page.Context(ctx)

	var status atomic.Int64
	wait := page.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type != proto.NetworkResourceTypeDocument {
			return false
		}
		status.Store(int64(e.Response.Status))
		return true
	})
	go wait()

	if err := page.Navigate(url); err != nil {
		return nil, siterag.Errorf(siterag.EFETCH, "navigate %s: %v", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, siterag.Errorf(siterag.EFETCH, "load %s: %v", url, err)
	}

	code := int(status.Load())
	if code == 0 {
		code = 200
	}
	if code < 200 || code > 299 {
		return nil, siterag.Errorf(siterag.EFETCH, "HTTP %d for %s", code, url)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, siterag.Errorf(siterag.EFETCH, "read %s: %v", url, err)
	}

	return &siterag.Page{
		URL:        url,
		StatusCode: code,
		Content:    html,
		FetchedAt:  time.Now().UTC(),
	}, nil
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (f *Fetcher) LauncherPID() int {
	return f.browser.pid()
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	return f.browser.release()
}
