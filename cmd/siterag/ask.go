package main

import (
	"fmt"

	"github.com/fwojciec/siterag"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	answer, err := deps.Asker.Ask(deps.Ctx, &siterag.AskRequest{Question: c.Question})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", siterag.ErrorMessage(err))
		return err
	}

	if answer.ContextChunksFound == 0 {
		fmt.Fprintf(deps.Stderr, "warning: no indexed content matched. Run 'siterag ingest' first?\n")
	}
	fmt.Fprintln(deps.Stdout, answer.Answer)
	return nil
}
