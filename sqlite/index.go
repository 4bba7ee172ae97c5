package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/fwojciec/siterag"
)

// Compile-time interface verification.
var _ siterag.IndexStore = (*IndexStore)(nil)

// IndexStore implements siterag.IndexStore using SQLite. Vectors are stored
// as blobs and ranked by brute-force cosine distance; ties are broken by id.
type IndexStore struct {
	db *DB
}

// NewIndexStore creates a new IndexStore.
func NewIndexStore(db *DB) *IndexStore {
	return &IndexStore{db: db}
}

// Collection describes a stored collection.
type Collection struct {
	Name      string
	Dims      int
	Entries   int
	CreatedAt time.Time
}

// Upsert adds entries, overwriting any with the same id. The first write to a
// collection fixes its dimension.
func (s *IndexStore) Upsert(ctx context.Context, collection string, entries []siterag.IndexEntry) error {
	if collection == "" {
		return siterag.Errorf(siterag.EINVALID, "collection name required")
	}
	if err := siterag.ValidateEntries(entries); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return siterag.Errorf(siterag.EINDEX, "begin upsert: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	dims := len(entries[0].Vector)
	var stored int
	err = tx.QueryRowContext(ctx, `SELECT dims FROM collections WHERE name = ?`, collection).Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO collections (name, dims, created_at) VALUES (?, ?, ?)
		`, collection, dims, time.Now().UTC().Format(time.RFC3339)); err != nil {
			return siterag.Errorf(siterag.EINDEX, "create collection %q: %v", collection, err)
		}
	case err != nil:
		return siterag.Errorf(siterag.EINDEX, "read collection %q: %v", collection, err)
	case stored != dims:
		return siterag.Errorf(siterag.EINVALID, "collection %q has %d dimensions, got %d", collection, stored, dims)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (collection, id, document, vector) VALUES (?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET document = excluded.document, vector = excluded.vector
	`)
	if err != nil {
		return siterag.Errorf(siterag.EINDEX, "prepare upsert: %v", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, collection, e.ID, e.Document, encodeVector(e.Vector)); err != nil {
			return siterag.Errorf(siterag.EINDEX, "upsert %q: %v", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return siterag.Errorf(siterag.EINDEX, "commit upsert: %v", err)
	}
	return nil
}

// Query returns up to k entries nearest to vector.
func (s *IndexStore) Query(ctx context.Context, collection string, vector []float32, k int) ([]siterag.QueryResult, error) {
	if k <= 0 {
		return nil, nil
	}
	if len(vector) == 0 {
		return nil, siterag.Errorf(siterag.EINVALID, "query vector required")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document, vector FROM entries WHERE collection = ?
	`, collection)
	if err != nil {
		return nil, siterag.Errorf(siterag.EINDEX, "query %q: %v", collection, err)
	}
	defer rows.Close()

	var results []siterag.QueryResult
	for rows.Next() {
		var r siterag.QueryResult
		var blob []byte
		if err := rows.Scan(&r.ID, &r.Document, &blob); err != nil {
			return nil, siterag.Errorf(siterag.EINDEX, "scan entry: %v", err)
		}
		v, err := decodeVector(blob)
		if err != nil {
			return nil, siterag.Errorf(siterag.EINDEX, "entry %q: %v", r.ID, err)
		}
		if len(v) != len(vector) {
			return nil, siterag.Errorf(siterag.EINVALID, "query vector has %d dimensions, collection %q has %d", len(vector), collection, len(v))
		}
		r.Distance = cosineDistance(vector, v)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, siterag.Errorf(siterag.EINDEX, "query %q: %v", collection, err)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].ID < results[j].ID
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Reset removes the collection and all its entries.
func (s *IndexStore) Reset(ctx context.Context, collection string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM collections WHERE name = ?`, collection); err != nil {
		return siterag.Errorf(siterag.EINDEX, "reset %q: %v", collection, err)
	}
	return nil
}

// Count returns the number of entries in the collection.
func (s *IndexStore) Count(ctx context.Context, collection string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM entries WHERE collection = ?
	`, collection).Scan(&n); err != nil {
		return 0, siterag.Errorf(siterag.EINDEX, "count %q: %v", collection, err)
	}
	return n, nil
}

// Collections lists the stored collections by name.
func (s *IndexStore) Collections(ctx context.Context) ([]Collection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.name, c.dims, c.created_at, COUNT(e.id)
		FROM collections c
		LEFT JOIN entries e ON e.collection = c.name
		GROUP BY c.name
		ORDER BY c.name ASC
	`)
	if err != nil {
		return nil, siterag.Errorf(siterag.EINDEX, "list collections: %v", err)
	}
	defer rows.Close()

	var collections []Collection
	for rows.Next() {
		var c Collection
		var createdAt string
		if err := rows.Scan(&c.Name, &c.Dims, &createdAt, &c.Entries); err != nil {
			return nil, siterag.Errorf(siterag.EINDEX, "scan collection: %v", err)
		}
		if c.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
			return nil, err
		}
		collections = append(collections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, siterag.Errorf(siterag.EINDEX, "list collections: %v", err)
	}
	return collections, nil
}
