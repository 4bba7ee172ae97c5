// Package gemini provides a Generator, an Embedder and a TokenCounter backed
// by Google Gemini.
package gemini

import (
	"context"

	"github.com/fwojciec/siterag"
	"google.golang.org/genai"
)

// Default models.
const (
	DefaultModel      = "gemini-2.5-flash"
	DefaultEmbedModel = "text-embedding-004"
)

// Ensure Generator implements siterag.Generator at compile time.
var _ siterag.Generator = (*Generator)(nil)

// Generator implements siterag.Generator using Google Gemini.
type Generator struct {
	client *genai.Client
	model  string
}

// NewGenerator creates a new Generator. An empty model selects DefaultModel.
func NewGenerator(client *genai.Client, model string) *Generator {
	if model == "" {
		model = DefaultModel
	}
	return &Generator{client: client, model: model}
}

// Generate returns the model's answer to prompt.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", siterag.Errorf(siterag.EINVALID, "prompt required")
	}
	if g.client == nil {
		return "", siterag.Errorf(siterag.EGENERATE, "gemini client not configured")
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		BuildConfig(),
	)
	if err != nil {
		return "", siterag.Errorf(siterag.EGENERATE, "gemini %s: %v", g.model, err)
	}
	if result == nil {
		return "", siterag.Errorf(siterag.EGENERATE, "gemini returned nil result")
	}

	return result.Text(), nil
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.4)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You are a helpful assistant answering questions about an organization's website. Prefer the context provided in the prompt. If the context does not contain the answer, say what you can and note that it may be incomplete.",
			}},
		},
		Temperature: &temp,
	}
}
