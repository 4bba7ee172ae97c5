package bloom_test

import (
	"fmt"
	"testing"

	"github.com/fwojciec/siterag/bloom"
	"github.com/stretchr/testify/assert"
)

func TestFilter(t *testing.T) {
	t.Parallel()

	t.Run("insert reports repeats", func(t *testing.T) {
		t.Parallel()

		f := bloom.New(100, 0.01)

		assert.False(t, f.MayContain("https://friscomasjid.org/events"))
		assert.False(t, f.Insert("https://friscomasjid.org/events"))
		assert.True(t, f.Insert("https://friscomasjid.org/events"))
		assert.True(t, f.MayContain("https://friscomasjid.org/events"))
		assert.False(t, f.MayContain("https://friscomasjid.org/prayer"))
		assert.Equal(t, 1, f.Inserted())
	})

	t.Run("non-positive sizing takes defaults", func(t *testing.T) {
		t.Parallel()

		f := bloom.New(0, 0)

		for i := range bloom.DefaultCapacity {
			f.Insert(fmt.Sprintf("https://friscomasjid.org/page/%d", i))
		}
		assert.InDelta(t, bloom.DefaultFalsePositiveRate, f.FalsePositiveRate(), 0.005)
	})

	t.Run("estimate starts at zero", func(t *testing.T) {
		t.Parallel()

		assert.Zero(t, bloom.New(10, 0.01).FalsePositiveRate())
	})

	t.Run("false positives stay near the configured rate", func(t *testing.T) {
		t.Parallel()

		const n = 5000
		f := bloom.New(n, 0.01)
		for i := range n {
			f.Insert(fmt.Sprintf("https://friscomasjid.org/in/%d", i))
		}

		var hits int
		for i := range n {
			if f.MayContain(fmt.Sprintf("https://friscomasjid.org/out/%d", i)) {
				hits++
			}
		}
		assert.Less(t, float64(hits)/n, 0.02)
	})
}
