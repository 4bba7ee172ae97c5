package siterag

import "context"

// IndexEntry is the persisted unit of the vector index.
type IndexEntry struct {
	ID       string
	Vector   []float32
	Document string
}

// QueryResult is an index entry matched by a nearest-neighbor query.
type QueryResult struct {
	ID       string  `json:"id"`
	Document string  `json:"document"`
	Distance float32 `json:"distance"` // Cosine distance, lower is closer
}

// IndexStore persists entries in named collections and answers
// nearest-neighbor queries. Collections are created lazily on first write
// and survive process restarts.
type IndexStore interface {
	// Upsert adds entries to the collection. Re-adding an existing id
	// overwrites it (last write wins). Ids must be unique within the call.
	Upsert(ctx context.Context, collection string, entries []IndexEntry) error

	// Query returns up to k entries ordered by ascending distance to vector.
	// Querying a collection that does not exist returns no results.
	Query(ctx context.Context, collection string, vector []float32, k int) ([]QueryResult, error)

	// Reset removes every entry of the collection.
	Reset(ctx context.Context, collection string) error

	// Count returns the number of entries in the collection.
	Count(ctx context.Context, collection string) (int, error)
}

// ValidateEntries returns an error if entries contain empty or duplicate ids,
// empty vectors, or vectors of differing dimension.
func ValidateEntries(entries []IndexEntry) error {
	seen := make(map[string]struct{}, len(entries))
	dims := -1
	for _, e := range entries {
		if e.ID == "" {
			return Errorf(EINVALID, "index entry ID required")
		}
		if _, ok := seen[e.ID]; ok {
			return Errorf(EINVALID, "duplicate index entry ID %q", e.ID)
		}
		seen[e.ID] = struct{}{}
		if len(e.Vector) == 0 {
			return Errorf(EINVALID, "index entry %q has no vector", e.ID)
		}
		if dims == -1 {
			dims = len(e.Vector)
		} else if len(e.Vector) != dims {
			return Errorf(EINVALID, "index entry %q has %d dimensions, want %d", e.ID, len(e.Vector), dims)
		}
	}
	return nil
}
