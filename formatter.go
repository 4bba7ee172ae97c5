package siterag

import "strings"

// FormatContext joins retrieved chunks with blank lines. Returns
// NoContextPlaceholder when there are no chunks.
func FormatContext(chunks []string) string {
	if len(chunks) == 0 {
		return NoContextPlaceholder
	}
	return strings.Join(chunks, "\n\n")
}

// FormatHistory renders conversation history one entry per line.
func FormatHistory(history []string) string {
	return strings.Join(history, "\n")
}

// Prompt holds the parts of a retrieval-augmented prompt.
type Prompt struct {
	Organization string
	History      string
	Context      string
	Question     string
}

// String renders the prompt sent to the generation collaborator.
func (p Prompt) String() string {
	var sb strings.Builder
	sb.WriteString("You are a helpful assistant for ")
	sb.WriteString(p.Organization)
	sb.WriteString(". Use the provided context to answer questions accurately and helpfully.\n\n")
	sb.WriteString("Here is the conversation history:\n")
	sb.WriteString(p.History)
	sb.WriteString("\n\nHere is the relevant context from ")
	sb.WriteString(p.Organization)
	sb.WriteString(":\n")
	sb.WriteString(p.Context)
	sb.WriteString("\n\nUser Question: ")
	sb.WriteString(p.Question)
	sb.WriteString("\n\nInstructions:\n")
	sb.WriteString("- Answer based on the provided context when relevant\n")
	sb.WriteString("- Be informative and helpful\n")
	sb.WriteString("- If the context doesn't fully answer the question, provide what information you can\n")
	sb.WriteString("- Keep responses natural and conversational\n\n")
	sb.WriteString("Answer:\n")
	return sb.String()
}
