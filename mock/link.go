package mock

import "github.com/fwojciec/siterag"

var _ siterag.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of siterag.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(html string, pageURL string) ([]string, error)
}

func (l *LinkExtractor) ExtractLinks(html string, pageURL string) ([]string, error) {
	return l.ExtractLinksFn(html, pageURL)
}
