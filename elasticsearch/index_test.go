package elasticsearch_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/fwojciec/siterag"
	"github.com/fwojciec/siterag/elasticsearch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDoc struct {
	ID        string    `json:"id"`
	Document  string    `json:"document"`
	Embedding []float32 `json:"embedding"`
}

// fakeES emulates the handful of Elasticsearch endpoints the store calls.
type fakeES struct {
	mu       sync.Mutex
	indices  map[string]map[string]fakeDoc
	mappings map[string]string
	knn      []map[string]any
}

func newFakeES() *fakeES {
	return &fakeES{
		indices:  make(map[string]map[string]fakeDoc),
		mappings: make(map[string]string),
	}
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	index := parts[0]
	docs, exists := f.indices[index]

	switch {
	case len(parts) == 1 && r.Method == http.MethodHead:
		if !exists {
			w.WriteHeader(http.StatusNotFound)
		}
	case len(parts) == 1 && r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.indices[index] = make(map[string]fakeDoc)
		f.mappings[index] = string(body)
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	case len(parts) == 1 && r.Method == http.MethodDelete:
		if !exists {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"type":"index_not_found_exception"},"status":404}`))
			return
		}
		delete(f.indices, index)
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	case !exists:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"type":"index_not_found_exception"},"status":404}`))
	case parts[1] == "_bulk":
		scanner := bufio.NewScanner(r.Body)
		scanner.Buffer(make([]byte, 1<<20), 1<<20)
		for scanner.Scan() {
			var action struct {
				Index struct {
					ID string `json:"_id"`
				} `json:"index"`
			}
			_ = json.Unmarshal(scanner.Bytes(), &action)
			scanner.Scan()
			var doc fakeDoc
			_ = json.Unmarshal(scanner.Bytes(), &doc)
			docs[action.Index.ID] = doc
		}
		_, _ = w.Write([]byte(`{"errors":false,"items":[]}`))
	case parts[1] == "_count":
		_ = json.NewEncoder(w).Encode(map[string]int{"count": len(docs)})
	case parts[1] == "_search":
		var req struct {
			KNN map[string]any `json:"knn"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.knn = append(f.knn, req.KNN)
		f.search(w, docs, req.KNN)
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func (f *fakeES) search(w http.ResponseWriter, docs map[string]fakeDoc, knn map[string]any) {
	raw, _ := json.Marshal(knn["query_vector"])
	var query []float32
	_ = json.Unmarshal(raw, &query)
	k := int(knn["k"].(float64))

	type hit struct {
		Score  float64 `json:"_score"`
		Source fakeDoc `json:"_source"`
	}
	var hits []hit
	for _, d := range docs {
		hits = append(hits, hit{Score: (1 + cosine(query, d.Embedding)) / 2, Source: fakeDoc{ID: d.ID, Document: d.Document}})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > k {
		hits = hits[:k]
	}

	var resp struct {
		Hits struct {
			Hits []hit `json:"hits"`
		} `json:"hits"`
	}
	resp.Hits.Hits = hits
	_ = json.NewEncoder(w).Encode(resp)
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func newStore(t *testing.T) (*elasticsearch.IndexStore, *fakeES) {
	t.Helper()

	f := newFakeES()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	store, err := elasticsearch.New(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return store, f
}

func TestIndexStore(t *testing.T) {
	t.Parallel()

	t.Run("creates the index lazily with cosine mapping", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		s, f := newStore(t)

		require.NoError(t, s.Upsert(ctx, "Frisco_Events", []siterag.IndexEntry{
			{ID: "a", Vector: []float32{1, 0, 0}, Document: "a"},
		}))

		f.mu.Lock()
		defer f.mu.Unlock()
		mapping := f.mappings["frisco_events"]
		assert.Contains(t, mapping, `"dims": 3`)
		assert.Contains(t, mapping, `"similarity": "cosine"`)
	})

	t.Run("query converts scores to cosine distance", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		s, f := newStore(t)
		require.NoError(t, s.Upsert(ctx, "events", []siterag.IndexEntry{
			{ID: "far", Vector: []float32{0, 1}, Document: "far"},
			{ID: "near", Vector: []float32{1, 0}, Document: "near"},
		}))

		results, err := s.Query(ctx, "events", []float32{1, 0}, 2)

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "near", results[0].ID)
		assert.Equal(t, "near", results[0].Document)
		assert.InDelta(t, 0, results[0].Distance, 1e-6)
		assert.Equal(t, "far", results[1].ID)
		assert.InDelta(t, 1, results[1].Distance, 1e-6)

		f.mu.Lock()
		defer f.mu.Unlock()
		require.Len(t, f.knn, 1)
		assert.InDelta(t, 50, f.knn[0]["num_candidates"], 0)
	})

	t.Run("last write wins", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		s, _ := newStore(t)
		require.NoError(t, s.Upsert(ctx, "events", []siterag.IndexEntry{{ID: "a", Vector: []float32{1}, Document: "old"}}))
		require.NoError(t, s.Upsert(ctx, "events", []siterag.IndexEntry{{ID: "a", Vector: []float32{1}, Document: "new"}}))

		n, err := s.Count(ctx, "events")
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		results, err := s.Query(ctx, "events", []float32{1}, 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "new", results[0].Document)
	})

	t.Run("missing collection is empty", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		s, _ := newStore(t)

		results, err := s.Query(ctx, "missing", []float32{1}, 3)
		require.NoError(t, err)
		assert.Empty(t, results)

		n, err := s.Count(ctx, "missing")
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		assert.NoError(t, s.Reset(ctx, "missing"))
	})

	t.Run("reset drops the index and recreates on next write", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		s, _ := newStore(t)
		require.NoError(t, s.Upsert(ctx, "events", []siterag.IndexEntry{{ID: "a", Vector: []float32{1}, Document: "a"}}))

		require.NoError(t, s.Reset(ctx, "events"))
		n, err := s.Count(ctx, "events")
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		require.NoError(t, s.Upsert(ctx, "events", []siterag.IndexEntry{{ID: "b", Vector: []float32{1}, Document: "b"}}))
		n, err = s.Count(ctx, "events")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("rejects invalid entries", func(t *testing.T) {
		t.Parallel()

		s, _ := newStore(t)

		err := s.Upsert(context.Background(), "events", []siterag.IndexEntry{{ID: "", Vector: []float32{1}}})

		assert.Equal(t, siterag.EINVALID, siterag.ErrorCode(err))
	})
}
