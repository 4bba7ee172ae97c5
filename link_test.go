package siterag_test

import (
	"testing"

	"github.com/fwojciec/siterag"
	"github.com/stretchr/testify/assert"
)

func TestScope_Contains(t *testing.T) {
	t.Parallel()

	scope := siterag.NewScope("friscomasjid.org")

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"exact host", "https://friscomasjid.org/a", true},
		{"www variant", "https://www.friscomasjid.org/a", true},
		{"host is case insensitive", "https://FriscoMasjid.org/a", true},
		{"port is ignored", "http://friscomasjid.org:8080/a", true},
		{"other host", "https://other.com/b", false},
		{"subdomain", "https://events.friscomasjid.org/", false},
		{"mailto", "mailto:info@friscomasjid.org", false},
		{"garbage", "://", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, scope.Contains(tt.url))
		})
	}
}

func TestScope_Hosts(t *testing.T) {
	t.Parallel()

	t.Run("bare domain adds the www variant", func(t *testing.T) {
		t.Parallel()

		scope := siterag.NewScope("Example.org", "")

		assert.Equal(t, []string{"example.org", "www.example.org"}, scope.Hosts())
	})

	t.Run("www domain matches only itself", func(t *testing.T) {
		t.Parallel()

		scope := siterag.NewScope("www.example.org")

		assert.Equal(t, []string{"www.example.org"}, scope.Hosts())
		assert.True(t, scope.Contains("https://www.example.org/a"))
		assert.False(t, scope.Contains("https://example.org/a"))
	})
}
