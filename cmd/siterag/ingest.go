package main

import (
	"fmt"

	"github.com/fwojciec/siterag"
)

// Run executes the ingest command.
func (c *IngestCmd) Run(deps *Dependencies) error {
	if c.Reset {
		if err := deps.Pipeline.Reset(deps.Ctx); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", siterag.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "Cleared collection %q\n", deps.Collection)
	}

	result, err := deps.Pipeline.Ingest(deps.Ctx, c.Seed)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error ingesting: %s\n", siterag.ErrorMessage(err))
		return err
	}

	for _, f := range result.Failures {
		fmt.Fprintf(deps.Stderr, "  skip %s (%s): %s\n", f.URL, f.Step, siterag.ErrorMessage(f.Err))
	}

	fmt.Fprintf(deps.Stdout, "Indexed %d pages, %d chunks (%d entries upserted)\n",
		result.Pages, result.Chunks, result.Upserted)
	if result.Tokens > 0 {
		fmt.Fprintf(deps.Stdout, "  %s\n", formatTokens(result.Tokens))
	}
	if result.Truncated {
		fmt.Fprintf(deps.Stdout, "  stopped at --max-pages=%d\n", c.MaxPages)
	}
	if result.Partial() {
		fmt.Fprintf(deps.Stdout, "  %d failures; the collection is partially updated\n", len(result.Failures))
	}
	return nil
}

// formatTokens formats a token count with a k suffix for readability.
func formatTokens(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d tokens", n)
	}
	return fmt.Sprintf("~%dk tokens", (n+500)/1000)
}
