package gemini

import (
	"context"

	"github.com/fwojciec/siterag"
	"google.golang.org/genai"
)

var _ siterag.Embedder = (*Embedder)(nil)

// Embedder implements siterag.Embedder using Gemini embedding models.
type Embedder struct {
	client *genai.Client
	model  string
}

// NewEmbedder creates a new Embedder. An empty model selects
// DefaultEmbedModel. A nil client is an EEMBED error.
func NewEmbedder(client *genai.Client, model string) (*Embedder, error) {
	if client == nil {
		return nil, siterag.Errorf(siterag.EEMBED, "gemini client required")
	}
	if model == "" {
		model = DefaultEmbedModel
	}
	return &Embedder{client: client, model: model}, nil
}

// Embed returns one vector per text.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		if t == "" {
			return nil, siterag.Errorf(siterag.EINVALID, "text %d is empty", i)
		}
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, nil)
	if err != nil {
		return nil, siterag.Errorf(siterag.EEMBED, "gemini %s: %v", e.model, err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, siterag.Errorf(siterag.EEMBED, "got %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		vectors[i] = emb.Values
	}
	return vectors, nil
}
