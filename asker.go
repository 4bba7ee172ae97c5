package siterag

import "context"

// NoContextPlaceholder replaces the context section of a prompt when
// retrieval produced nothing.
const NoContextPlaceholder = "No relevant context found."

// Retriever finds the stored document texts nearest to a query.
type Retriever interface {
	// Retrieve returns up to k document texts in nearest-first order.
	// It never fails: internal errors yield an empty result.
	Retrieve(ctx context.Context, query string, k int) []string
}

// Generator is the downstream text-generation collaborator.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// AskRequest is a question with the conversation history preceding it.
type AskRequest struct {
	Question string   `json:"question"`
	History  []string `json:"history"`
}

// Answer is the response to an AskRequest.
type Answer struct {
	Answer             string   `json:"answer"`
	History            []string `json:"history"`
	ContextChunksFound int      `json:"context_chunks_found"`
}

// Asker answers questions using retrieved site content.
type Asker interface {
	// Ask answers the question. Returns EINVALID for an empty question and
	// EGENERATE when the generation collaborator fails.
	Ask(ctx context.Context, req *AskRequest) (*Answer, error)
}
