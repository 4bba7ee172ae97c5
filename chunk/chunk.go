// Package chunk splits extracted text into overlapping word windows.
package chunk

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/siterag"
)

// Chunking defaults, in words.
const (
	DefaultSize     = 250
	DefaultOverlap  = 50
	DefaultMinWords = 30
)

// Ensure Chunker implements siterag.Chunker at compile time.
var _ siterag.Chunker = (*Chunker)(nil)

// Chunker slides a fixed-size word window over the concatenated text of a
// page's segments.
type Chunker struct {
	size     int
	overlap  int
	minWords int
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithSize sets the window size in words.
func WithSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.size = size
		}
	}
}

// WithOverlap sets the number of words shared by consecutive windows.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// WithMinWords sets the minimum word count of an emitted chunk.
func WithMinWords(n int) Option {
	return func(c *Chunker) {
		if n >= 0 {
			c.minWords = n
		}
	}
}

// New creates a Chunker. An overlap that is not smaller than the window
// size is clamped to a quarter of the size.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		size:     DefaultSize,
		overlap:  DefaultOverlap,
		minWords: DefaultMinWords,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.overlap >= c.size {
		c.overlap = c.size / 4
	}

	return c
}

// Size returns the window size in words.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the overlap in words.
func (c *Chunker) Overlap() int { return c.overlap }

// Chunk joins the segment texts with single spaces, splits them into words,
// and emits every window of at least the minimum word count. Windows start
// every size-overlap words until the words are exhausted. Chunks with
// identical text are collapsed to the first occurrence.
func (c *Chunker) Chunk(segments []siterag.Segment) []siterag.Chunk {
	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Text
	}
	words := strings.Fields(strings.Join(texts, " "))

	step := c.size - c.overlap
	seen := make(map[string]struct{})
	var chunks []siterag.Chunk

	for start := 0; start < len(words); start += step {
		end := min(start+c.size, len(words))
		window := words[start:end]
		if len(window) < c.minWords {
			continue
		}

		text := strings.Join(window, " ")
		if _, ok := seen[text]; ok {
			continue
		}
		seen[text] = struct{}{}

		chunks = append(chunks, siterag.Chunk{
			ID:       ID(text),
			Text:     text,
			Position: len(chunks),
			Words:    len(window),
			Overlap:  c.overlap,
		})
	}

	return chunks
}

// ID derives a stable chunk id from its text.
func ID(text string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(text))
}
