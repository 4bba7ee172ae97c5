package mock

import "github.com/fwojciec/siterag"

var _ siterag.ContentExtractor = (*ContentExtractor)(nil)

// ContentExtractor is a mock implementation of siterag.ContentExtractor.
type ContentExtractor struct {
	ExtractFn func(html string) ([]siterag.Segment, error)
}

func (e *ContentExtractor) Extract(html string) ([]siterag.Segment, error) {
	return e.ExtractFn(html)
}
