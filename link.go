package siterag

import (
	"net/url"
	"sort"
	"strings"
)

// LinkExtractor extracts outbound links from a page.
type LinkExtractor interface {
	// ExtractLinks parses HTML and returns the absolute, in-scope, non-asset
	// URLs referenced by anchor elements, in document order without duplicates.
	// The pageURL is used to resolve relative hrefs.
	ExtractLinks(html string, pageURL string) ([]string, error)
}

// Scope is the set of hosts a crawl is allowed to visit. A configured domain
// matches its exact host and the www.-prefixed variant.
type Scope struct {
	hosts map[string]struct{}
}

// NewScope returns a Scope for the given domains. A domain that already
// starts with "www." matches only itself, so "www.example.org" does not admit
// the bare "example.org".
func NewScope(domains ...string) *Scope {
	s := &Scope{hosts: make(map[string]struct{})}
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		s.hosts[d] = struct{}{}
		if !strings.HasPrefix(d, "www.") {
			s.hosts["www."+d] = struct{}{}
		}
	}
	return s
}

// Contains reports whether rawURL is an http(s) URL whose host is in scope.
func (s *Scope) Contains(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	_, ok := s.hosts[strings.ToLower(u.Hostname())]
	return ok
}

// Hosts returns the allowed hosts in sorted order.
func (s *Scope) Hosts() []string {
	hosts := make([]string, 0, len(s.hosts))
	for h := range s.hosts {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts
}
