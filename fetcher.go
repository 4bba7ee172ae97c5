package siterag

import "context"

// Fetcher retrieves the raw content of a URL.
type Fetcher interface {
	// Fetch makes a single attempt to retrieve the URL and returns the page
	// with its raw body and HTTP status. Network failures, timeouts and
	// non-2xx statuses are returned as EFETCH errors.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (*Page, error)

	// Close releases any resources held by the fetcher.
	Close() error
}
