package main

import (
	"fmt"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	chunks := deps.Retriever.Retrieve(deps.Ctx, c.Query, c.Limit)
	if len(chunks) == 0 {
		fmt.Fprintln(deps.Stdout, "No matching chunks.")
		return nil
	}

	for i, text := range chunks {
		if i > 0 {
			fmt.Fprintln(deps.Stdout)
		}
		fmt.Fprintf(deps.Stdout, "[%d] %s\n", i+1, text)
	}
	return nil
}
