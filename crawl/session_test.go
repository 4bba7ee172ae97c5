package crawl_test

import (
	"fmt"
	"testing"

	"github.com/fwojciec/siterag/crawl"
	"github.com/stretchr/testify/assert"
)

func TestSession(t *testing.T) {
	t.Parallel()

	t.Run("first visit succeeds and repeat visits do not", func(t *testing.T) {
		t.Parallel()

		s := crawl.NewSession()

		assert.False(t, s.Visited("https://friscomasjid.org/a"))
		assert.True(t, s.Visit("https://friscomasjid.org/a"))
		assert.False(t, s.Visit("https://friscomasjid.org/a"))
		assert.True(t, s.Visited("https://friscomasjid.org/a"))
		assert.Equal(t, 1, s.Len())
	})

	t.Run("urls differing by fragment are distinct", func(t *testing.T) {
		t.Parallel()

		s := crawl.NewSession()

		assert.True(t, s.Visit("https://friscomasjid.org/a"))
		assert.True(t, s.Visit("https://friscomasjid.org/a#events"))
		assert.Equal(t, 2, s.Len())
	})

	t.Run("membership is exact beyond the filter's sizing", func(t *testing.T) {
		t.Parallel()

		s := crawl.NewSession()
		const n = 30000
		for i := range n {
			assert.True(t, s.Visit(fmt.Sprintf("https://friscomasjid.org/p/%d", i)))
		}

		assert.Equal(t, n, s.Len())
		assert.False(t, s.Visited("https://friscomasjid.org/p/never"))
	})
}
