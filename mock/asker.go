package mock

import (
	"context"

	"github.com/fwojciec/siterag"
)

var (
	_ siterag.Asker     = (*Asker)(nil)
	_ siterag.Retriever = (*Retriever)(nil)
	_ siterag.Generator = (*Generator)(nil)
)

// Asker is a mock implementation of siterag.Asker.
type Asker struct {
	AskFn func(ctx context.Context, req *siterag.AskRequest) (*siterag.Answer, error)
}

func (a *Asker) Ask(ctx context.Context, req *siterag.AskRequest) (*siterag.Answer, error) {
	return a.AskFn(ctx, req)
}

// Retriever is a mock implementation of siterag.Retriever.
type Retriever struct {
	RetrieveFn func(ctx context.Context, query string, k int) []string
}

func (r *Retriever) Retrieve(ctx context.Context, query string, k int) []string {
	return r.RetrieveFn(ctx, query, k)
}

// Generator is a mock implementation of siterag.Generator.
type Generator struct {
	GenerateFn func(ctx context.Context, prompt string) (string, error)
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.GenerateFn(ctx, prompt)
}
