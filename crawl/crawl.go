// Package crawl traverses the in-scope pages of a website starting from a
// seed URL.
package crawl

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"time"

	"github.com/fwojciec/siterag"
)

// Crawler performs a depth-first traversal of in-scope pages. URLs are
// fetched at most once per Session; fetch failures are recorded and the
// traversal continues.
type Crawler struct {
	Fetcher  siterag.Fetcher
	Links    siterag.LinkExtractor
	Scope    *siterag.Scope
	Limiter  siterag.HostLimiter // optional
	Pages    siterag.PageStore   // optional raw-page archive
	Logger   *slog.Logger
	MaxPages int // 0 means unlimited

	// RetryDelays are waited out between fetch attempts of one URL. Nil
	// means a single attempt.
	RetryDelays []time.Duration
}

// Failure records a page that could not be fetched.
type Failure struct {
	URL string
	Err error
}

// Result holds the outcome of a crawl run.
type Result struct {
	Visited   []string  // URLs fetched successfully, in visit order
	Failures  []Failure // URLs whose fetch failed
	Truncated bool      // MaxPages stopped the run before the frontier emptied
}

// PageFunc is called for every successfully fetched page, in visit order.
// A returned error stops the crawl.
type PageFunc func(ctx context.Context, page *siterag.Page) error

// Crawl runs a fresh Session from seed.
func (c *Crawler) Crawl(ctx context.Context, seed string, fn PageFunc) (*Result, error) {
	return c.CrawlSession(ctx, NewSession(), seed, fn)
}

// CrawlSession crawls from seed, skipping URLs already visited in session.
// An out-of-scope seed yields an empty result.
func (c *Crawler) CrawlSession(ctx context.Context, session *Session, seed string, fn PageFunc) (*Result, error) {
	logger := c.logger()
	var result Result

	stack := []string{seed}
	fetched := 0
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			c.abortPages(logger)
			return &result, err
		}

		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if session.Visited(next) {
			continue
		}
		if c.Scope != nil && !c.Scope.Contains(next) {
			logger.Debug("skipping out-of-scope url", "url", next)
			continue
		}
		if c.MaxPages > 0 && fetched >= c.MaxPages {
			result.Truncated = true
			break
		}
		session.Visit(next)
		fetched++

		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx, hostOf(next)); err != nil {
				c.abortPages(logger)
				return &result, err
			}
		}

		page, err := c.fetch(ctx, next, logger)
		if err != nil {
			logger.Warn("skipping page", "url", next, "err", err)
			result.Failures = append(result.Failures, Failure{URL: next, Err: err})
			continue
		}
		result.Visited = append(result.Visited, next)

		if c.Pages != nil {
			if err := c.Pages.Save(ctx, page); err != nil {
				logger.Warn("archive page", "url", next, "err", err)
			}
		}

		if fn != nil {
			if err := fn(ctx, page); err != nil {
				c.abortPages(logger)
				return &result, err
			}
		}

		links, err := c.Links.ExtractLinks(page.Content, next)
		if err != nil {
			logger.Warn("extract links", "url", next, "err", err)
			continue
		}

		// Push in reverse so the first link on the page is visited first.
		for i := len(links) - 1; i >= 0; i-- {
			if !session.Visited(links[i]) {
				stack = append(stack, links[i])
			}
		}
	}

	if c.Pages != nil {
		if err := c.Pages.Commit(); err != nil {
			logger.Warn("commit page archive", "err", err)
		}
	}

	return &result, nil
}

func (c *Crawler) abortPages(logger *slog.Logger) {
	if c.Pages == nil {
		return
	}
	if err := c.Pages.Abort(); err != nil {
		logger.Warn("abort page archive", "err", err)
	}
}

func (c *Crawler) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
