package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/siterag"
	"golang.org/x/net/html"
)

// DefaultContainer is the CSS selector of the main content region.
const DefaultContainer = "div.article-content-main"

// Selectors used by ContentExtractor.
const (
	boilerplateSelector = "script, style, nav, footer, header, form, noscript"
	textSelector        = "h1, h2, h3, h4, p, li"
)

// invisibleTags are skipped entirely in whole-page mode.
var invisibleTags = map[string]bool{
	"script":   true,
	"style":    true,
	"head":     true,
	"title":    true,
	"meta":     true,
	"noscript": true,
}

// Ensure ContentExtractor implements siterag.ContentExtractor at compile time.
var _ siterag.ContentExtractor = (*ContentExtractor)(nil)

// ContentExtractor produces text segments from page markup.
//
// In the default strict mode only the main content container is considered:
// a page without it yields zero segments. Boilerplate elements and comments
// are removed from the container, then heading, paragraph and list-item text
// is collected. Whole-page mode instead collects every visible text node.
// In both modes segments are trimmed, empty segments are dropped, and
// segments containing the excluded token (case-insensitive) are dropped.
type ContentExtractor struct {
	container string
	token     string
	wholePage bool
}

// ContentOption configures a ContentExtractor.
type ContentOption func(*ContentExtractor)

// WithContainer sets the CSS selector of the main content region.
func WithContainer(selector string) ContentOption {
	return func(e *ContentExtractor) {
		e.container = selector
	}
}

// WithExcludedToken drops segments containing token. An empty token
// disables the filter.
func WithExcludedToken(token string) ContentOption {
	return func(e *ContentExtractor) {
		e.token = strings.ToLower(token)
	}
}

// WithWholePage switches to whole-page visible-text mode.
func WithWholePage() ContentOption {
	return func(e *ContentExtractor) {
		e.wholePage = true
	}
}

// NewContentExtractor creates a new ContentExtractor in strict mode.
func NewContentExtractor(opts ...ContentOption) *ContentExtractor {
	e := &ContentExtractor{container: DefaultContainer}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the page's segments in document order. It never fails on
// malformed markup; unrecognized structure yields no segments.
func (e *ContentExtractor) Extract(rawHTML string) ([]siterag.Segment, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, nil
	}

	if e.wholePage {
		return e.filter(visibleText(doc.Selection)), nil
	}

	main := doc.Find(e.container).First()
	if main.Length() == 0 {
		return nil, nil
	}

	main.Find(boilerplateSelector).Remove()
	for _, n := range main.Nodes {
		removeComments(n)
	}

	var segments []siterag.Segment
	main.Find(textSelector).Each(func(_ int, sel *goquery.Selection) {
		segments = append(segments, siterag.Segment{
			Tag:  goquery.NodeName(sel),
			Text: normalizeSpace(sel.Text()),
		})
	})

	return e.filter(segments), nil
}

// filter drops empty segments and segments containing the excluded token.
func (e *ContentExtractor) filter(segments []siterag.Segment) []siterag.Segment {
	out := segments[:0]
	for _, seg := range segments {
		if seg.Text == "" {
			continue
		}
		if e.token != "" && strings.Contains(strings.ToLower(seg.Text), e.token) {
			continue
		}
		out = append(out, seg)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// visibleText collects every text node outside invisible elements.
func visibleText(sel *goquery.Selection) []siterag.Segment {
	var segments []siterag.Segment
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if invisibleTags[n.Data] {
				return
			}
		case html.TextNode:
			tag := ""
			if n.Parent != nil {
				tag = n.Parent.Data
			}
			segments = append(segments, siterag.Segment{Tag: tag, Text: normalizeSpace(n.Data)})
			return
		case html.CommentNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return segments
}

// removeComments detaches every comment node below n.
func removeComments(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.CommentNode {
			n.RemoveChild(c)
		} else {
			removeComments(c)
		}
		c = next
	}
}

// normalizeSpace trims s and collapses internal whitespace runs.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
