// Package qdrant provides an IndexStore backed by Qdrant over gRPC.
package qdrant

import (
	"context"
	"fmt"
	"sync"

	"github.com/fwojciec/siterag"
	"github.com/google/uuid"
	qdrantclient "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// DefaultAddr is the default Qdrant gRPC address.
const DefaultAddr = "localhost:6334"

// Payload keys.
const (
	payloadID       = "id"
	payloadDocument = "document"
)

var _ siterag.IndexStore = (*IndexStore)(nil)

// IndexStore implements siterag.IndexStore using Qdrant collections with
// cosine distance. Point ids are UUIDv5 values derived from entry ids.
type IndexStore struct {
	conn        *grpc.ClientConn
	collections qdrantclient.CollectionsClient
	points      qdrantclient.PointsClient

	mu      sync.Mutex
	created map[string]bool
}

// Open connects to Qdrant at addr.
func Open(addr string) (*IndexStore, error) {
	if addr == "" {
		addr = DefaultAddr
	}
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
	}
	s := NewIndexStore(conn)
	s.conn = conn
	return s, nil
}

// NewIndexStore creates an IndexStore over an existing connection.
func NewIndexStore(cc grpc.ClientConnInterface) *IndexStore {
	return &IndexStore{
		collections: qdrantclient.NewCollectionsClient(cc),
		points:      qdrantclient.NewPointsClient(cc),
		created:     make(map[string]bool),
	}
}

// Close closes the connection opened by Open.
func (s *IndexStore) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// PointID maps an entry id to its Qdrant point id.
func PointID(id string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(id)).String()
}

// ensureCollection creates the collection with dims-sized cosine vectors
// unless it exists.
func (s *IndexStore) ensureCollection(ctx context.Context, name string, dims int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.created[name] {
		return nil
	}

	collections, err := s.collections.List(ctx, &qdrantclient.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	exists := false
	for _, col := range collections.GetCollections() {
		if col.GetName() == name {
			exists = true
			break
		}
	}

	if !exists {
		_, err = s.collections.Create(ctx, &qdrantclient.CreateCollection{
			CollectionName: name,
			VectorsConfig: &qdrantclient.VectorsConfig{
				Config: &qdrantclient.VectorsConfig_Params{
					Params: &qdrantclient.VectorParams{
						Size:     uint64(dims),
						Distance: qdrantclient.Distance_Cosine,
					},
				},
			},
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
	}

	s.created[name] = true
	return nil
}

func stringValue(s string) *qdrantclient.Value {
	return &qdrantclient.Value{Kind: &qdrantclient.Value_StringValue{StringValue: s}}
}

// Upsert writes entries and waits for the write to apply.
func (s *IndexStore) Upsert(ctx context.Context, collection string, entries []siterag.IndexEntry) error {
	if err := siterag.ValidateEntries(entries); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	if err := s.ensureCollection(ctx, collection, len(entries[0].Vector)); err != nil {
		return siterag.Errorf(siterag.EINDEX, "upsert %q: %v", collection, err)
	}

	points := make([]*qdrantclient.PointStruct, len(entries))
	for i, e := range entries {
		points[i] = &qdrantclient.PointStruct{
			Id: &qdrantclient.PointId{
				PointIdOptions: &qdrantclient.PointId_Uuid{Uuid: PointID(e.ID)},
			},
			Vectors: &qdrantclient.Vectors{
				VectorsOptions: &qdrantclient.Vectors_Vector{
					Vector: &qdrantclient.Vector{Data: e.Vector},
				},
			},
			Payload: map[string]*qdrantclient.Value{
				payloadID:       stringValue(e.ID),
				payloadDocument: stringValue(e.Document),
			},
		}
	}

	wait := true
	if _, err := s.points.Upsert(ctx, &qdrantclient.UpsertPoints{
		CollectionName: collection,
		Wait:           &wait,
		Points:         points,
	}); err != nil {
		return siterag.Errorf(siterag.EINDEX, "upsert %q: %v", collection, err)
	}
	return nil
}

// Query returns the k nearest points. Qdrant's cosine score is the
// similarity, so distance is 1 - score.
func (s *IndexStore) Query(ctx context.Context, collection string, vector []float32, k int) ([]siterag.QueryResult, error) {
	if k <= 0 {
		return nil, nil
	}

	resp, err := s.points.Search(ctx, &qdrantclient.SearchPoints{
		CollectionName: collection,
		Vector:         vector,
		Limit:          uint64(k),
		WithPayload: &qdrantclient.WithPayloadSelector{
			SelectorOptions: &qdrantclient.WithPayloadSelector_Include{
				Include: &qdrantclient.PayloadIncludeSelector{
					Fields: []string{payloadID, payloadDocument},
				},
			},
		},
	})
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, siterag.Errorf(siterag.EINDEX, "search %q: %v", collection, err)
	}

	results := make([]siterag.QueryResult, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		results = append(results, siterag.QueryResult{
			ID:       point.GetPayload()[payloadID].GetStringValue(),
			Document: point.GetPayload()[payloadDocument].GetStringValue(),
			Distance: 1 - point.GetScore(),
		})
	}
	return results, nil
}

// Reset deletes the collection. A missing collection is not an error.
func (s *IndexStore) Reset(ctx context.Context, collection string) error {
	s.mu.Lock()
	delete(s.created, collection)
	s.mu.Unlock()

	_, err := s.collections.Delete(ctx, &qdrantclient.DeleteCollection{CollectionName: collection})
	if err != nil && status.Code(err) != codes.NotFound {
		return siterag.Errorf(siterag.EINDEX, "reset %q: %v", collection, err)
	}
	return nil
}

// Count returns the exact number of points in the collection.
func (s *IndexStore) Count(ctx context.Context, collection string) (int, error) {
	exact := true
	resp, err := s.points.Count(ctx, &qdrantclient.CountPoints{
		CollectionName: collection,
		Exact:          &exact,
	})
	if status.Code(err) == codes.NotFound {
		return 0, nil
	}
	if err != nil {
		return 0, siterag.Errorf(siterag.EINDEX, "count %q: %v", collection, err)
	}
	return int(resp.GetResult().GetCount()), nil
}
