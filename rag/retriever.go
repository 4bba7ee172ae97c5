// Package rag answers questions from indexed site content.
package rag

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/siterag"
)

// DefaultK is the number of chunks retrieved for a question.
const DefaultK = 10

// Ensure Retriever implements siterag.Retriever at compile time.
var _ siterag.Retriever = (*Retriever)(nil)

// Retriever embeds a query and returns the nearest documents of one
// collection. Every failure is logged and degrades to an empty result.
type Retriever struct {
	Embedder   siterag.Embedder
	Store      siterag.IndexStore
	Collection string
	Logger     *slog.Logger
}

// Retrieve returns up to k document texts in nearest-first order.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) []string {
	logger := r.logger()

	if query == "" || k <= 0 {
		return nil
	}

	vectors, err := r.Embedder.Embed(ctx, []string{query})
	if err != nil {
		logger.Warn("embed query", "collection", r.Collection, "err", err)
		return nil
	}
	if len(vectors) != 1 {
		logger.Warn("embed query", "collection", r.Collection, "vectors", len(vectors))
		return nil
	}

	results, err := r.Store.Query(ctx, r.Collection, vectors[0], k)
	if err != nil {
		logger.Warn("query index", "collection", r.Collection, "err", err)
		return nil
	}

	docs := make([]string, 0, len(results))
	for _, res := range results {
		docs = append(docs, res.Document)
	}
	return docs
}

func (r *Retriever) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
