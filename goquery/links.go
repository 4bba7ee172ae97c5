// Package goquery implements link and content extraction over parsed HTML
// using github.com/PuerkitoBio/goquery.
package goquery

import (
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/siterag"
)

// DefaultExcludedExtensions lists the binary-asset extensions never crawled.
var DefaultExcludedExtensions = []string{".png", ".jpg", ".jpeg", ".pdf"}

// Ensure LinkExtractor implements siterag.LinkExtractor at compile time.
var _ siterag.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor returns the in-scope anchor targets of a page.
//
// Filtering is applied in order: hrefs are resolved against the page URL,
// URLs outside the scope are dropped, then URLs whose path ends in an
// excluded extension are dropped. Query strings and fragments are kept as-is,
// so URLs differing only by fragment are distinct.
type LinkExtractor struct {
	scope      *siterag.Scope
	extensions []string
}

// LinkOption configures a LinkExtractor.
type LinkOption func(*LinkExtractor)

// WithExcludedExtensions replaces the excluded extension set.
// Extensions are matched case-insensitively and should include the dot.
func WithExcludedExtensions(exts ...string) LinkOption {
	return func(e *LinkExtractor) {
		e.extensions = make([]string, 0, len(exts))
		for _, ext := range exts {
			e.extensions = append(e.extensions, strings.ToLower(ext))
		}
	}
}

// NewLinkExtractor creates a LinkExtractor restricted to scope.
func NewLinkExtractor(scope *siterag.Scope, opts ...LinkOption) *LinkExtractor {
	e := &LinkExtractor{
		scope:      scope,
		extensions: DefaultExcludedExtensions,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractLinks parses HTML and returns the filtered links in document order.
// Each URL appears at most once.
func (e *LinkExtractor) ExtractLinks(html string, pageURL string) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, siterag.Errorf(siterag.EINVALID, "invalid page URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, siterag.Errorf(siterag.EINVALID, "failed to parse HTML: %v", err)
	}

	seen := make(map[string]struct{})
	var links []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" || isNonHTTPLink(href) {
			return
		}

		resolved := resolveURL(base, href)
		if resolved == "" {
			return
		}
		if !e.scope.Contains(resolved) {
			return
		}
		if e.isExcluded(resolved) {
			return
		}

		if _, ok := seen[resolved]; ok {
			return
		}
		seen[resolved] = struct{}{}
		links = append(links, resolved)
	})

	return links, nil
}

// isExcluded reports whether the URL path ends in an excluded extension.
func (e *LinkExtractor) isExcluded(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if ext == "" {
		return false
	}
	for _, excluded := range e.extensions {
		if ext == excluded {
			return true
		}
	}
	return false
}

// resolveURL resolves a relative URL against a base URL.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// isNonHTTPLink checks if a link uses a non-HTTP scheme.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(href)
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
