package ollama

import (
	"context"
	"strings"

	"github.com/fwojciec/siterag"
	"github.com/ollama/ollama/api"
)

var _ siterag.Generator = (*Generator)(nil)

// Generator implements siterag.Generator using the /api/generate endpoint.
type Generator struct {
	client *api.Client
	model  string
}

// NewGenerator returns a Generator for the first of models that the server
// has. It fails with EGENERATE when none are available.
func NewGenerator(ctx context.Context, client *api.Client, models ...string) (*Generator, error) {
	if client == nil {
		return nil, siterag.Errorf(siterag.EGENERATE, "ollama client required")
	}
	if len(models) == 0 {
		models = []string{DefaultGenerateModel, DefaultFallbackModel}
	}

	var lastErr error
	for _, m := range models {
		if err := available(ctx, client, m); err != nil {
			lastErr = err
			continue
		}
		return &Generator{client: client, model: m}, nil
	}
	return nil, siterag.Errorf(siterag.EGENERATE, "no generation model available: %v (try: ollama pull %s)", lastErr, models[0])
}

// Model returns the selected model name.
func (g *Generator) Model() string {
	return g.model
}

// Generate returns the model's completion of prompt.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	stream := false
	var sb strings.Builder
	err := g.client.Generate(ctx, &api.GenerateRequest{
		Model:  g.model,
		Prompt: prompt,
		Stream: &stream,
	}, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", siterag.Errorf(siterag.EGENERATE, "generate with %s: %v", g.model, err)
	}
	return strings.TrimSpace(sb.String()), nil
}
