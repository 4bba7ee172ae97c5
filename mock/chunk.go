package mock

import "github.com/fwojciec/siterag"

var _ siterag.Chunker = (*Chunker)(nil)

// Chunker is a mock implementation of siterag.Chunker.
type Chunker struct {
	ChunkFn func(segments []siterag.Segment) []siterag.Chunk
}

func (c *Chunker) Chunk(segments []siterag.Segment) []siterag.Chunk {
	return c.ChunkFn(segments)
}
