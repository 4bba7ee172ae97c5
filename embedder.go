package siterag

import "context"

// Embedder maps texts to fixed-dimension vectors using a pretrained model.
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	// Inputs must be non-empty strings.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
