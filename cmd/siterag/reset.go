package main

import (
	"fmt"

	"github.com/fwojciec/siterag"
)

// Run executes the reset command.
func (c *ResetCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm removal\n")
		return siterag.Errorf(siterag.EINVALID, "use --force to confirm removal")
	}

	if err := deps.Store.Reset(deps.Ctx, deps.Collection); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", siterag.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Cleared collection %q\n", deps.Collection)
	return nil
}

// Run executes the count command.
func (c *CountCmd) Run(deps *Dependencies) error {
	n, err := deps.Store.Count(deps.Ctx, deps.Collection)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", siterag.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "%d\n", n)
	return nil
}
