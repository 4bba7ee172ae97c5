// Package elasticsearch provides an IndexStore backed by Elasticsearch
// dense_vector fields and approximate kNN search.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/fwojciec/siterag"
)

// Config holds Elasticsearch client configuration.
type Config struct {
	Addresses []string
	Username  string
	Password  string
}

var _ siterag.IndexStore = (*IndexStore)(nil)

// IndexStore implements siterag.IndexStore with one Elasticsearch index per
// collection. Index names are the lower-cased collection names.
type IndexStore struct {
	es *elasticsearch.Client

	mu      sync.Mutex
	created map[string]bool
}

// New creates an IndexStore.
func New(config Config) (*IndexStore, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: config.Addresses,
		Username:  config.Username,
		Password:  config.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}
	return &IndexStore{es: es, created: make(map[string]bool)}, nil
}

// Ping checks if Elasticsearch is available.
func (s *IndexStore) Ping(ctx context.Context) bool {
	res, err := s.es.Ping(s.es.Ping.WithContext(ctx))
	if err != nil {
		return false
	}
	defer res.Body.Close()
	return !res.IsError()
}

func indexName(collection string) string {
	return strings.ToLower(collection)
}

// indexMapping returns the mapping for a collection of dims-sized vectors.
func indexMapping(dims int) string {
	return fmt.Sprintf(`{
	"mappings": {
		"properties": {
			"id": { "type": "keyword" },
			"document": { "type": "text", "index": false },
			"embedding": {
				"type": "dense_vector",
				"dims": %d,
				"index": true,
				"similarity": "cosine"
			}
		}
	}
}`, dims)
}

// ensureIndex creates the collection's index unless it exists.
func (s *IndexStore) ensureIndex(ctx context.Context, index string, dims int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.created[index] {
		return nil
	}

	res, err := s.es.Indices.Exists([]string{index}, s.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index: %w", err)
	}
	res.Body.Close()

	if res.StatusCode != http.StatusOK {
		res, err = s.es.Indices.Create(
			index,
			s.es.Indices.Create.WithContext(ctx),
			s.es.Indices.Create.WithBody(strings.NewReader(indexMapping(dims))),
		)
		if err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
		defer res.Body.Close()
		if res.IsError() {
			return fmt.Errorf("error creating index: %s", res.String())
		}
	}

	s.created[index] = true
	return nil
}

type entryDoc struct {
	ID        string    `json:"id"`
	Document  string    `json:"document"`
	Embedding []float32 `json:"embedding"`
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		Status int `json:"status"`
		Error  *struct {
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

// Upsert indexes entries with the bulk API. Existing ids are replaced.
func (s *IndexStore) Upsert(ctx context.Context, collection string, entries []siterag.IndexEntry) error {
	if err := siterag.ValidateEntries(entries); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	index := indexName(collection)
	if err := s.ensureIndex(ctx, index, len(entries[0].Vector)); err != nil {
		return siterag.Errorf(siterag.EINDEX, "upsert %q: %v", collection, err)
	}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, e := range entries {
		action := map[string]any{"index": map[string]any{"_id": e.ID}}
		if err := enc.Encode(action); err != nil {
			return fmt.Errorf("failed to marshal action: %w", err)
		}
		if err := enc.Encode(entryDoc{ID: e.ID, Document: e.Document, Embedding: e.Vector}); err != nil {
			return fmt.Errorf("failed to marshal document: %w", err)
		}
	}

	res, err := s.es.Bulk(
		&body,
		s.es.Bulk.WithContext(ctx),
		s.es.Bulk.WithIndex(index),
		s.es.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return siterag.Errorf(siterag.EINDEX, "bulk upsert %q: %v", collection, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return siterag.Errorf(siterag.EINDEX, "bulk upsert %q: %s", collection, res.String())
	}

	var br bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&br); err != nil {
		return siterag.Errorf(siterag.EINDEX, "decode bulk response: %v", err)
	}
	if br.Errors {
		for _, item := range br.Items {
			for _, result := range item {
				if result.Error != nil {
					return siterag.Errorf(siterag.EINDEX, "bulk upsert %q: %s", collection, result.Error.Reason)
				}
			}
		}
		return siterag.Errorf(siterag.EINDEX, "bulk upsert %q failed", collection)
	}
	return nil
}

// searchResponse represents ES search response structure.
type searchResponse struct {
	Hits struct {
		Hits []struct {
			Score  float64  `json:"_score"`
			Source entryDoc `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Query runs a kNN search. Elasticsearch scores cosine similarity as
// (1+cos)/2, which is converted back to cosine distance.
func (s *IndexStore) Query(ctx context.Context, collection string, vector []float32, k int) ([]siterag.QueryResult, error) {
	if k <= 0 {
		return nil, nil
	}

	searchQuery := map[string]any{
		"knn": map[string]any{
			"field":          "embedding",
			"query_vector":   vector,
			"k":              k,
			"num_candidates": max(2*k, 50),
		},
		"size":    k,
		"_source": []string{"id", "document"},
	}
	data, err := json.Marshal(searchQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(indexName(collection)),
		s.es.Search.WithBody(bytes.NewReader(data)),
	)
	if err != nil {
		return nil, siterag.Errorf(siterag.EINDEX, "search %q: %v", collection, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if res.IsError() {
		return nil, siterag.Errorf(siterag.EINDEX, "search %q: %s", collection, res.String())
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, siterag.Errorf(siterag.EINDEX, "decode search response: %v", err)
	}

	results := make([]siterag.QueryResult, len(sr.Hits.Hits))
	for i, hit := range sr.Hits.Hits {
		results[i] = siterag.QueryResult{
			ID:       hit.Source.ID,
			Document: hit.Source.Document,
			Distance: float32(1 - (2*hit.Score - 1)),
		}
	}
	return results, nil
}

// Reset deletes the collection's index. A missing index is not an error.
func (s *IndexStore) Reset(ctx context.Context, collection string) error {
	index := indexName(collection)
	res, err := s.es.Indices.Delete([]string{index}, s.es.Indices.Delete.WithContext(ctx))
	if err != nil {
		return siterag.Errorf(siterag.EINDEX, "reset %q: %v", collection, err)
	}
	defer res.Body.Close()

	s.mu.Lock()
	delete(s.created, index)
	s.mu.Unlock()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return siterag.Errorf(siterag.EINDEX, "reset %q: %s", collection, res.String())
	}
	return nil
}

// Count returns the number of documents in the collection's index.
func (s *IndexStore) Count(ctx context.Context, collection string) (int, error) {
	res, err := s.es.Count(
		s.es.Count.WithContext(ctx),
		s.es.Count.WithIndex(indexName(collection)),
	)
	if err != nil {
		return 0, siterag.Errorf(siterag.EINDEX, "count %q: %v", collection, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return 0, nil
	}
	if res.IsError() {
		return 0, siterag.Errorf(siterag.EINDEX, "count %q: %s", collection, res.String())
	}

	var cr struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&cr); err != nil {
		return 0, siterag.Errorf(siterag.EINDEX, "decode count response: %v", err)
	}
	return cr.Count, nil
}
