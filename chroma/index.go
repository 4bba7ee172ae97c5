// Package chroma provides an IndexStore backed by a Chroma server.
package chroma

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
	chhttp "github.com/amikos-tech/chroma-go/pkg/commons/http"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/fwojciec/siterag"
)

// DefaultURL is the default Chroma server address.
const DefaultURL = "http://localhost:8000"

// includeDistances asks a query to return distances. The client library
// has no constant for it.
const includeDistances = chroma.Include("distances")

var _ siterag.IndexStore = (*IndexStore)(nil)

// IndexStore implements siterag.IndexStore with Chroma collections using
// cosine distance. Vectors are always supplied by the caller.
type IndexStore struct {
	client chroma.Client
	ef     embeddings.EmbeddingFunction

	mu          sync.Mutex
	collections map[string]chroma.Collection
}

// Open connects to the Chroma server at baseURL. The embedder, when set,
// lets Chroma embed texts it is given without vectors.
func Open(baseURL string, embedder siterag.Embedder) (*IndexStore, error) {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	client, err := chroma.NewHTTPClient(chroma.WithBaseURL(baseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create Chroma client: %w", err)
	}
	return &IndexStore{
		client:      client,
		ef:          embeddingFunction{embedder: embedder},
		collections: make(map[string]chroma.Collection),
	}, nil
}

// Close releases the client.
func (s *IndexStore) Close() error {
	return s.client.Close()
}

// collection returns the named collection, creating it when create is set.
// Without create, a missing collection is nil with no error.
func (s *IndexStore) collection(ctx context.Context, name string, create bool) (chroma.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if col, ok := s.collections[name]; ok {
		return col, nil
	}

	var (
		col chroma.Collection
		err error
	)
	if create {
		col, err = s.client.GetOrCreateCollection(ctx, name,
			chroma.WithEmbeddingFunctionCreate(s.ef),
			chroma.WithCollectionMetadataCreate(
				chroma.NewMetadata(chroma.NewStringAttribute("hnsw:space", "cosine")),
			),
		)
	} else {
		col, err = s.client.GetCollection(ctx, name, chroma.WithEmbeddingFunctionGet(s.ef))
		if isNotFound(err) {
			return nil, nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open collection %q: %w", name, err)
	}
	s.collections[name] = col
	return col, nil
}

// isNotFound reports whether err is Chroma's answer for a missing
// collection. Older servers answer 400 or 500 with a "does not exist" message.
func isNotFound(err error) bool {
	var chErr *chhttp.ChromaError
	if !errors.As(err, &chErr) {
		return false
	}
	return chErr.ErrorCode == http.StatusNotFound ||
		strings.Contains(chErr.ErrorID, "NotFound") ||
		strings.Contains(chErr.Message, "does not exist")
}

// Upsert writes entries with their ids, vectors and documents.
func (s *IndexStore) Upsert(ctx context.Context, collection string, entries []siterag.IndexEntry) error {
	if err := siterag.ValidateEntries(entries); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	col, err := s.collection(ctx, collection, true)
	if err != nil {
		return siterag.Errorf(siterag.EINDEX, "upsert %q: %v", collection, err)
	}

	ids := make([]chroma.DocumentID, len(entries))
	texts := make([]string, len(entries))
	vectors := make([]embeddings.Embedding, len(entries))
	for i, e := range entries {
		ids[i] = chroma.DocumentID(e.ID)
		texts[i] = e.Document
		vectors[i] = embeddings.NewEmbeddingFromFloat32(e.Vector)
	}

	if err := col.Upsert(ctx,
		chroma.WithIDs(ids...),
		chroma.WithTexts(texts...),
		chroma.WithEmbeddings(vectors...),
	); err != nil {
		return siterag.Errorf(siterag.EINDEX, "upsert %q: %v", collection, err)
	}
	return nil
}

// Query returns up to k entries nearest to vector. A missing collection
// has no results.
func (s *IndexStore) Query(ctx context.Context, collection string, vector []float32, k int) ([]siterag.QueryResult, error) {
	if k <= 0 {
		return nil, nil
	}

	col, err := s.collection(ctx, collection, false)
	if err != nil {
		return nil, siterag.Errorf(siterag.EINDEX, "query %q: %v", collection, err)
	}
	if col == nil {
		return nil, nil
	}

	r, err := col.Query(ctx,
		chroma.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(vector)),
		chroma.WithNResults(k),
		chroma.WithIncludeQuery(chroma.IncludeDocuments, includeDistances),
	)
	if err != nil {
		return nil, siterag.Errorf(siterag.EINDEX, "query %q: %v", collection, err)
	}

	idGroups := r.GetIDGroups()
	docGroups := r.GetDocumentsGroups()
	distGroups := r.GetDistancesGroups()
	if len(idGroups) == 0 || len(docGroups) == 0 || len(distGroups) == 0 {
		return nil, nil
	}

	ids, docs, dists := idGroups[0], docGroups[0], distGroups[0]
	results := make([]siterag.QueryResult, 0, len(ids))
	for i := range ids {
		if i >= len(docs) || i >= len(dists) {
			break
		}
		results = append(results, siterag.QueryResult{
			ID:       string(ids[i]),
			Document: docs[i].ContentString(),
			Distance: float32(dists[i]),
		})
	}
	return results, nil
}

// Reset deletes the collection. A missing collection is not an error.
func (s *IndexStore) Reset(ctx context.Context, collection string) error {
	s.mu.Lock()
	delete(s.collections, collection)
	s.mu.Unlock()

	cols, err := s.client.ListCollections(ctx)
	if err != nil {
		return siterag.Errorf(siterag.EINDEX, "reset %q: %v", collection, err)
	}
	for _, col := range cols {
		if col.Name() != collection {
			continue
		}
		if err := s.client.DeleteCollection(ctx, collection); err != nil {
			return siterag.Errorf(siterag.EINDEX, "reset %q: %v", collection, err)
		}
	}
	return nil
}

// Count returns the number of entries in the collection, 0 when it does
// not exist.
func (s *IndexStore) Count(ctx context.Context, collection string) (int, error) {
	col, err := s.collection(ctx, collection, false)
	if err != nil {
		return 0, siterag.Errorf(siterag.EINDEX, "count %q: %v", collection, err)
	}
	if col == nil {
		return 0, nil
	}
	n, err := col.Count(ctx)
	if err != nil {
		return 0, siterag.Errorf(siterag.EINDEX, "count %q: %v", collection, err)
	}
	return n, nil
}
