package chunk_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/fwojciec/siterag"
	"github.com/fwojciec/siterag/chunk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// numberedWords returns n distinct words w1..wn.
func numberedWords(n int) []string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i+1)
	}
	return words
}

func segmentsOf(words []string) []siterag.Segment {
	return []siterag.Segment{{Tag: "p", Text: strings.Join(words, " ")}}
}

func chunkTexts(chunks []siterag.Chunk) map[string]bool {
	set := make(map[string]bool, len(chunks))
	for _, c := range chunks {
		set[c.Text] = true
	}
	return set
}

func TestChunker_Chunk(t *testing.T) {
	t.Parallel()

	t.Run("300 words yield two chunks with a 50 word seam", func(t *testing.T) {
		t.Parallel()

		words := numberedWords(300)
		chunks := chunk.New().Chunk(segmentsOf(words))

		require.Len(t, chunks, 2)
		assert.Equal(t, strings.Join(words[0:250], " "), chunks[0].Text)
		assert.Equal(t, strings.Join(words[200:300], " "), chunks[1].Text)
		assert.Equal(t, 250, chunks[0].Words)
		assert.Equal(t, 100, chunks[1].Words)
		assert.Equal(t, 0, chunks[0].Position)
		assert.Equal(t, 1, chunks[1].Position)
		assert.NotEqual(t, chunks[0].ID, chunks[1].ID)
	})

	t.Run("consecutive full windows share the overlap", func(t *testing.T) {
		t.Parallel()

		chunks := chunk.New().Chunk(segmentsOf(numberedWords(1000)))

		require.Greater(t, len(chunks), 1)
		for i := 0; i+1 < len(chunks); i++ {
			prev := strings.Fields(chunks[i].Text)
			next := strings.Fields(chunks[i+1].Text)
			assert.Equal(t, prev[len(prev)-50:], next[:50], "seam %d", i)
		}
	})

	t.Run("never emits chunks below the minimum word count", func(t *testing.T) {
		t.Parallel()

		c := chunk.New()
		for _, n := range []int{0, 1, 29, 30, 31, 229, 230, 249, 250, 251, 479, 480, 777} {
			for _, ch := range c.Chunk(segmentsOf(numberedWords(n))) {
				assert.GreaterOrEqual(t, len(strings.Fields(ch.Text)), 30, "input of %d words", n)
			}
		}
	})

	t.Run("short trailing window is dropped", func(t *testing.T) {
		t.Parallel()

		// windows start at 0 and 200; the second has 29 words
		chunks := chunk.New().Chunk(segmentsOf(numberedWords(229)))

		require.Len(t, chunks, 1)
		assert.Equal(t, 229, chunks[0].Words)
	})

	t.Run("input shorter than minimum yields nothing", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, chunk.New().Chunk(segmentsOf(numberedWords(29))))
		assert.Empty(t, chunk.New().Chunk(nil))
	})

	t.Run("segments are joined with single spaces", func(t *testing.T) {
		t.Parallel()

		segments := []siterag.Segment{
			{Tag: "h1", Text: strings.Join(numberedWords(20), " ")},
			{Tag: "p", Text: "  tail   words  " + strings.Repeat(" x", 15)},
		}

		chunks := chunk.New().Chunk(segments)

		require.Len(t, chunks, 1)
		assert.NotContains(t, chunks[0].Text, "  ")
		assert.Equal(t, 37, chunks[0].Words)
	})

	t.Run("duplicate windows collapse to one", func(t *testing.T) {
		t.Parallel()

		repeated := strings.Fields(strings.Repeat("same ", 600))
		chunks := chunk.New().Chunk(segmentsOf(repeated))

		// full windows are identical; the trailing 200-word window differs
		require.Len(t, chunks, 2)
		assert.Equal(t, 250, chunks[0].Words)
		assert.Equal(t, 200, chunks[1].Words)
	})

	t.Run("chunking is idempotent as a set", func(t *testing.T) {
		t.Parallel()

		c := chunk.New()
		segments := segmentsOf(numberedWords(733))

		first := chunkTexts(c.Chunk(segments))
		second := chunkTexts(c.Chunk(segments))

		assert.Equal(t, first, second)
	})

	t.Run("custom sizes", func(t *testing.T) {
		t.Parallel()

		c := chunk.New(chunk.WithSize(10), chunk.WithOverlap(5), chunk.WithMinWords(3))
		chunks := c.Chunk(segmentsOf(numberedWords(22)))

		// starts at 0, 5, 10, 15, 20 (last has 2 words and is dropped)
		require.Len(t, chunks, 4)
		assert.Equal(t, "w16 w17 w18 w19 w20 w21 w22", chunks[3].Text)
	})
}

func TestNew_ClampsOverlap(t *testing.T) {
	t.Parallel()

	c := chunk.New(chunk.WithSize(100), chunk.WithOverlap(100))

	assert.Equal(t, 100, c.Size())
	assert.Equal(t, 25, c.Overlap())
}

func TestID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, chunk.ID("hello world"), chunk.ID("hello world"))
	assert.NotEqual(t, chunk.ID("hello world"), chunk.ID("hello world!"))
	assert.Len(t, chunk.ID("anything"), 16)
}
