package main

import (
	"fmt"

	"github.com/fwojciec/siterag"
)

// Run executes the add command.
func (c *AddCmd) Run(deps *Dependencies) error {
	id, err := deps.Pipeline.AddDocument(deps.Ctx, c.ID, c.Text)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", siterag.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Added %s to %q\n", id, deps.Collection)
	return nil
}
