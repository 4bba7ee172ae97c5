package chroma

import (
	"context"

	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/fwojciec/siterag"
)

// embeddingFunction adapts a siterag.Embedder to Chroma's interface. Without
// an embedder it refuses to embed, so vectors must come from the caller.
type embeddingFunction struct {
	embedder siterag.Embedder
}

func (f embeddingFunction) EmbedDocuments(ctx context.Context, texts []string) ([]embeddings.Embedding, error) {
	if f.embedder == nil {
		return nil, siterag.Errorf(siterag.EEMBED, "chroma store has no embedder; supply vectors")
	}
	vectors, err := f.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	out := make([]embeddings.Embedding, len(vectors))
	for i, v := range vectors {
		out[i] = embeddings.NewEmbeddingFromFloat32(v)
	}
	return out, nil
}

func (f embeddingFunction) EmbedQuery(ctx context.Context, text string) (embeddings.Embedding, error) {
	out, err := f.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}
