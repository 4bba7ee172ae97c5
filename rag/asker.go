package rag

import (
	"context"
	"strings"

	"github.com/fwojciec/siterag"
)

// Ensure Asker implements siterag.Asker at compile time.
var _ siterag.Asker = (*Asker)(nil)

// Asker answers questions by retrieving context and prompting a Generator.
type Asker struct {
	Retriever    siterag.Retriever
	Generator    siterag.Generator
	Organization string
	K            int // DefaultK when zero
}

// Ask retrieves context for the question, renders the prompt and returns the
// generated answer with the extended history. The request history is not
// modified.
func (a *Asker) Ask(ctx context.Context, req *siterag.AskRequest) (*siterag.Answer, error) {
	if req == nil || strings.TrimSpace(req.Question) == "" {
		return nil, siterag.Errorf(siterag.EINVALID, "question required")
	}

	k := a.K
	if k <= 0 {
		k = DefaultK
	}
	chunks := a.Retriever.Retrieve(ctx, req.Question, k)

	prompt := siterag.Prompt{
		Organization: a.Organization,
		History:      siterag.FormatHistory(req.History),
		Context:      siterag.FormatContext(chunks),
		Question:     req.Question,
	}

	text, err := a.Generator.Generate(ctx, prompt.String())
	if err != nil {
		if siterag.ErrorCode(err) == siterag.EGENERATE {
			return nil, err
		}
		return nil, siterag.Errorf(siterag.EGENERATE, "generate answer: %v", err)
	}

	history := make([]string, 0, len(req.History)+2)
	history = append(history, req.History...)
	history = append(history, "User: "+req.Question, "Bot: "+text)

	return &siterag.Answer{
		Answer:             text,
		History:            history,
		ContextChunksFound: len(chunks),
	}, nil
}
