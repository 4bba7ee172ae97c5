package siterag

// Segment is a contiguous piece of visible text extracted from one page,
// attributed to the element it came from.
type Segment struct {
	Tag  string // e.g. "h2", "p", "li"
	Text string
}

// ContentExtractor isolates visible textual content from raw page markup.
type ContentExtractor interface {
	// Extract returns the filtered text segments of a page in document order.
	// A page without recognizable content yields zero segments, not an error.
	Extract(html string) ([]Segment, error)
}
