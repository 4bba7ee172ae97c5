package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/siterag"
)

var _ siterag.IndexStore = (*LoggingIndexStore)(nil)

// LoggingIndexStore wraps an IndexStore with debug logging.
type LoggingIndexStore struct {
	next   siterag.IndexStore
	logger *slog.Logger
}

// NewLoggingIndexStore creates a new LoggingIndexStore.
func NewLoggingIndexStore(next siterag.IndexStore, logger *slog.Logger) *LoggingIndexStore {
	return &LoggingIndexStore{next: next, logger: logger}
}

func (s *LoggingIndexStore) Upsert(ctx context.Context, collection string, entries []siterag.IndexEntry) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("upsert",
			"collection", collection,
			"entries", len(entries),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Upsert(ctx, collection, entries)
}

func (s *LoggingIndexStore) Query(ctx context.Context, collection string, vector []float32, k int) (results []siterag.QueryResult, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("query",
			"collection", collection,
			"k", k,
			"results", len(results),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Query(ctx, collection, vector, k)
}

func (s *LoggingIndexStore) Reset(ctx context.Context, collection string) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("reset",
			"collection", collection,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Reset(ctx, collection)
}

func (s *LoggingIndexStore) Count(ctx context.Context, collection string) (n int, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("count",
			"collection", collection,
			"n", n,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Count(ctx, collection)
}
