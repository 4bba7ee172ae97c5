package ollama

import (
	"context"

	"github.com/fwojciec/siterag"
	"github.com/ollama/ollama/api"
)

var _ siterag.Embedder = (*Embedder)(nil)

// Embedder implements siterag.Embedder using the /api/embed endpoint.
type Embedder struct {
	client *api.Client
	model  string
}

// NewEmbedder verifies that model is available and returns an Embedder for
// it. A missing model is an EEMBED error.
func NewEmbedder(ctx context.Context, client *api.Client, model string) (*Embedder, error) {
	if client == nil {
		return nil, siterag.Errorf(siterag.EEMBED, "ollama client required")
	}
	if err := available(ctx, client, model); err != nil {
		return nil, siterag.Errorf(siterag.EEMBED, "load embedding model: %v (try: ollama pull %s)", err, model)
	}
	return &Embedder{client: client, model: model}, nil
}

// Embed returns one vector per text.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	for i, t := range texts {
		if t == "" {
			return nil, siterag.Errorf(siterag.EINVALID, "text %d is empty", i)
		}
	}

	resp, err := e.client.Embed(ctx, &api.EmbedRequest{
		Model: e.model,
		Input: texts,
	})
	if err != nil {
		return nil, siterag.Errorf(siterag.EEMBED, "embed with %s: %v", e.model, err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, siterag.Errorf(siterag.EEMBED, "got %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}
	return resp.Embeddings, nil
}
