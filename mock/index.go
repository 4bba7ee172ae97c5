package mock

import (
	"context"

	"github.com/fwojciec/siterag"
)

var _ siterag.IndexStore = (*IndexStore)(nil)

// IndexStore is a mock implementation of siterag.IndexStore.
type IndexStore struct {
	UpsertFn func(ctx context.Context, collection string, entries []siterag.IndexEntry) error
	QueryFn  func(ctx context.Context, collection string, vector []float32, k int) ([]siterag.QueryResult, error)
	ResetFn  func(ctx context.Context, collection string) error
	CountFn  func(ctx context.Context, collection string) (int, error)
}

func (s *IndexStore) Upsert(ctx context.Context, collection string, entries []siterag.IndexEntry) error {
	return s.UpsertFn(ctx, collection, entries)
}

func (s *IndexStore) Query(ctx context.Context, collection string, vector []float32, k int) ([]siterag.QueryResult, error) {
	return s.QueryFn(ctx, collection, vector, k)
}

func (s *IndexStore) Reset(ctx context.Context, collection string) error {
	return s.ResetFn(ctx, collection)
}

func (s *IndexStore) Count(ctx context.Context, collection string) (int, error) {
	return s.CountFn(ctx, collection)
}
