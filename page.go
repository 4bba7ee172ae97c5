package siterag

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// Page represents a fetched page. It is identified by its URL and is never
// re-fetched within a crawl run.
type Page struct {
	URL        string
	StatusCode int
	Content    string // Raw markup
	FetchedAt  time.Time
}

// PageStore archives raw fetched pages.
// Save writes to a pending location; Commit makes changes permanent;
// Abort discards pending changes.
type PageStore interface {
	Save(ctx context.Context, page *Page) error
	Commit() error
	Abort() error
}

// PageName returns the flat archive name for a page URL: the path with
// surrounding slashes trimmed and inner slashes replaced by underscores,
// "index" for an empty path, plus ".html".
//
// Example: https://example.com/events/ramadan/ → events_ramadan.html
func PageName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", Errorf(EINVALID, "invalid page URL %q", rawURL)
	}
	name := strings.ReplaceAll(strings.Trim(u.Path, "/"), "/", "_")
	if name == "" {
		name = "index"
	}
	return name + ".html", nil
}
