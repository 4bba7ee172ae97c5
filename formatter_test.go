package siterag_test

import (
	"testing"

	"github.com/fwojciec/siterag"
	"github.com/stretchr/testify/assert"
)

func TestFormatContext(t *testing.T) {
	t.Parallel()

	t.Run("joins chunks with blank lines", func(t *testing.T) {
		t.Parallel()

		result := siterag.FormatContext([]string{"first chunk", "second chunk"})

		assert.Equal(t, "first chunk\n\nsecond chunk", result)
	})

	t.Run("uses placeholder when empty", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "No relevant context found.", siterag.FormatContext(nil))
	})
}

func TestFormatHistory(t *testing.T) {
	t.Parallel()

	result := siterag.FormatHistory([]string{"User: hi", "Bot: hello"})

	assert.Equal(t, "User: hi\nBot: hello", result)
}

func TestPrompt_String(t *testing.T) {
	t.Parallel()

	p := siterag.Prompt{
		Organization: "the Islamic Center of Frisco",
		History:      "User: hi",
		Context:      "Jummah starts at 1:30 PM.",
		Question:     "When is Jummah?",
	}

	result := p.String()

	assert.Contains(t, result, "You are a helpful assistant for the Islamic Center of Frisco.")
	assert.Contains(t, result, "Here is the conversation history:\nUser: hi\n")
	assert.Contains(t, result, "context from the Islamic Center of Frisco:\nJummah starts at 1:30 PM.\n")
	assert.Contains(t, result, "User Question: When is Jummah?")
	assert.Contains(t, result, "Answer:\n")
}
