// Package trafilatura provides an article-style siterag.ContentExtractor for
// pages that lack a recognizable main content container.
package trafilatura

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/siterag"
	"github.com/markusmobius/go-trafilatura"
)

const blockSelector = "h1, h2, h3, h4, h5, h6, p, li, pre, blockquote, td"

// Ensure Extractor implements siterag.ContentExtractor at compile time.
var _ siterag.ContentExtractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to find the main content of a page and
// splits it into block-level segments.
type Extractor struct {
	token string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithExcludedToken drops segments containing token (case-insensitive).
func WithExcludedToken(token string) Option {
	return func(e *Extractor) {
		e.token = strings.ToLower(token)
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the main content's segments in document order. A page
// trafilatura finds no content in yields no segments.
func (e *Extractor) Extract(rawHTML string) ([]siterag.Segment, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, nil
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), trafilatura.Options{
		EnableFallback: true,
	})
	if err != nil || result == nil {
		return nil, nil
	}

	var segments []siterag.Segment
	if result.ContentNode != nil {
		doc := goquery.NewDocumentFromNode(result.ContentNode)
		doc.Find(blockSelector).Each(func(_ int, sel *goquery.Selection) {
			// Leaf blocks only; a list item wrapping a paragraph yields the paragraph.
			if sel.Find(blockSelector).Length() > 0 {
				return
			}
			segments = append(segments, siterag.Segment{
				Tag:  goquery.NodeName(sel),
				Text: strings.Join(strings.Fields(sel.Text()), " "),
			})
		})
	}
	if len(segments) == 0 && result.ContentText != "" {
		segments = append(segments, siterag.Segment{
			Tag:  "text",
			Text: strings.Join(strings.Fields(result.ContentText), " "),
		})
	}

	return e.filter(segments), nil
}

func (e *Extractor) filter(segments []siterag.Segment) []siterag.Segment {
	var out []siterag.Segment
	for _, seg := range segments {
		if seg.Text == "" {
			continue
		}
		if e.token != "" && strings.Contains(strings.ToLower(seg.Text), e.token) {
			continue
		}
		out = append(out, seg)
	}
	return out
}
