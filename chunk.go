package siterag

// Chunk is an overlapping window of words drawn from a page's text segments.
type Chunk struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Position  int    `json:"position"` // Index of the window in source order
	Words     int    `json:"words"`
	Overlap   int    `json:"overlap"`
	SourceURL string `json:"sourceUrl,omitempty"`
}

// Chunker merges and re-splits text segments into chunks.
type Chunker interface {
	// Chunk returns the deduplicated chunks for one page's segments.
	// Identical input always yields the identical chunk set.
	Chunk(segments []Segment) []Chunk
}
