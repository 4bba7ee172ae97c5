package crawl

import "github.com/fwojciec/siterag/bloom"

// Session is the visited set of one crawl run. A Bloom filter answers the
// common "never seen" case; a map resolves the filter's false positives so
// that membership is exact.
//
// A Session is not safe for concurrent use.
type Session struct {
	filter *bloom.Filter
	seen   map[string]struct{}
}

// NewSession returns an empty Session.
func NewSession() *Session {
	return &Session{
		filter: bloom.New(bloom.DefaultCapacity, bloom.DefaultFalsePositiveRate),
		seen:   make(map[string]struct{}),
	}
}

// Visit marks url as visited. It returns false if url was already visited.
func (s *Session) Visit(url string) bool {
	if s.filter.Insert(url) {
		if _, ok := s.seen[url]; ok {
			return false
		}
	}
	s.seen[url] = struct{}{}
	return true
}

// Visited reports whether url has been visited in this session.
func (s *Session) Visited(url string) bool {
	if !s.filter.MayContain(url) {
		return false
	}
	_, ok := s.seen[url]
	return ok
}

// Len returns the number of visited URLs.
func (s *Session) Len() int {
	return len(s.seen)
}
