package sqlite_test

import (
	"context"
	"testing"

	"github.com/fwojciec/siterag"
	"github.com/fwojciec/siterag/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *sqlite.IndexStore {
	t.Helper()

	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })

	return sqlite.NewIndexStore(db)
}

func TestIndexStore_Query(t *testing.T) {
	t.Parallel()

	t.Run("orders by ascending cosine distance", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		s := openStore(t)
		require.NoError(t, s.Upsert(ctx, "events", []siterag.IndexEntry{
			{ID: "far", Vector: []float32{0, 1}, Document: "far"},
			{ID: "near", Vector: []float32{1, 0.1}, Document: "near"},
			{ID: "exact", Vector: []float32{2, 0}, Document: "exact"},
		}))

		results, err := s.Query(ctx, "events", []float32{1, 0}, 10)

		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "exact", results[0].ID)
		assert.Equal(t, "near", results[1].ID)
		assert.Equal(t, "far", results[2].ID)
		assert.InDelta(t, 0, results[0].Distance, 1e-6)
		assert.InDelta(t, 1, results[2].Distance, 1e-6)
	})

	t.Run("limits to k", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		s := openStore(t)
		require.NoError(t, s.Upsert(ctx, "events", []siterag.IndexEntry{
			{ID: "a", Vector: []float32{1, 0}, Document: "a"},
			{ID: "b", Vector: []float32{0, 1}, Document: "b"},
		}))

		results, err := s.Query(ctx, "events", []float32{1, 0}, 1)

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "a", results[0].Document)
	})

	t.Run("ties break by id", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		s := openStore(t)
		require.NoError(t, s.Upsert(ctx, "events", []siterag.IndexEntry{
			{ID: "b", Vector: []float32{0, 1}, Document: "b"},
			{ID: "a", Vector: []float32{0, 2}, Document: "a"},
		}))

		results, err := s.Query(ctx, "events", []float32{1, 0}, 2)

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "a", results[0].ID)
		assert.Equal(t, "b", results[1].ID)
	})

	t.Run("missing collection returns no results", func(t *testing.T) {
		t.Parallel()

		results, err := openStore(t).Query(context.Background(), "missing", []float32{1}, 5)

		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("rejects mismatched query dimension", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		s := openStore(t)
		require.NoError(t, s.Upsert(ctx, "events", []siterag.IndexEntry{
			{ID: "a", Vector: []float32{1, 0}, Document: "a"},
		}))

		_, err := s.Query(ctx, "events", []float32{1, 0, 0}, 5)

		assert.Equal(t, siterag.EINVALID, siterag.ErrorCode(err))
	})
}

func TestIndexStore_Upsert(t *testing.T) {
	t.Parallel()

	t.Run("last write wins", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		s := openStore(t)
		require.NoError(t, s.Upsert(ctx, "events", []siterag.IndexEntry{
			{ID: "a", Vector: []float32{1, 0}, Document: "old"},
		}))
		require.NoError(t, s.Upsert(ctx, "events", []siterag.IndexEntry{
			{ID: "a", Vector: []float32{0, 1}, Document: "new"},
		}))

		n, err := s.Count(ctx, "events")
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		results, err := s.Query(ctx, "events", []float32{0, 1}, 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "new", results[0].Document)
		assert.InDelta(t, 0, results[0].Distance, 1e-6)
	})

	t.Run("rejects duplicate ids within a call", func(t *testing.T) {
		t.Parallel()

		err := openStore(t).Upsert(context.Background(), "events", []siterag.IndexEntry{
			{ID: "a", Vector: []float32{1}, Document: "x"},
			{ID: "a", Vector: []float32{1}, Document: "y"},
		})

		assert.Equal(t, siterag.EINVALID, siterag.ErrorCode(err))
	})

	t.Run("rejects a dimension change", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		s := openStore(t)
		require.NoError(t, s.Upsert(ctx, "events", []siterag.IndexEntry{
			{ID: "a", Vector: []float32{1, 0}, Document: "a"},
		}))

		err := s.Upsert(ctx, "events", []siterag.IndexEntry{
			{ID: "b", Vector: []float32{1, 0, 0}, Document: "b"},
		})

		assert.Equal(t, siterag.EINVALID, siterag.ErrorCode(err))
	})

	t.Run("collections are independent", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		s := openStore(t)
		require.NoError(t, s.Upsert(ctx, "one", []siterag.IndexEntry{
			{ID: "a", Vector: []float32{1, 0}, Document: "a"},
		}))
		require.NoError(t, s.Upsert(ctx, "two", []siterag.IndexEntry{
			{ID: "a", Vector: []float32{1, 0, 0}, Document: "a"},
			{ID: "b", Vector: []float32{0, 1, 0}, Document: "b"},
		}))

		collections, err := s.Collections(ctx)

		require.NoError(t, err)
		require.Len(t, collections, 2)
		assert.Equal(t, "one", collections[0].Name)
		assert.Equal(t, 2, collections[0].Dims)
		assert.Equal(t, 1, collections[0].Entries)
		assert.Equal(t, "two", collections[1].Name)
		assert.Equal(t, 3, collections[1].Dims)
		assert.Equal(t, 2, collections[1].Entries)
		assert.False(t, collections[0].CreatedAt.IsZero())
	})
}

func TestIndexStore_Reset(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openStore(t)
	require.NoError(t, s.Upsert(ctx, "events", []siterag.IndexEntry{
		{ID: "a", Vector: []float32{1, 0}, Document: "a"},
	}))

	require.NoError(t, s.Reset(ctx, "events"))
	require.NoError(t, s.Reset(ctx, "missing"))

	n, err := s.Count(ctx, "events")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// A reset collection accepts a new dimension.
	require.NoError(t, s.Upsert(ctx, "events", []siterag.IndexEntry{
		{ID: "a", Vector: []float32{1, 0, 0}, Document: "a"},
	}))
}

func TestIndexStore_Persists(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := t.TempDir() + "/index.db"

	db := sqlite.NewDB(path)
	require.NoError(t, db.Open())
	require.NoError(t, sqlite.NewIndexStore(db).Upsert(ctx, "events", []siterag.IndexEntry{
		{ID: "a", Vector: []float32{0.25, -0.5}, Document: "kept"},
	}))
	require.NoError(t, db.Close())

	db = sqlite.NewDB(path)
	require.NoError(t, db.Open())
	defer db.Close()

	results, err := sqlite.NewIndexStore(db).Query(ctx, "events", []float32{0.25, -0.5}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "kept", results[0].Document)
}
