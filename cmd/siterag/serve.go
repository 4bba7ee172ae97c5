package main

import (
	"fmt"

	sitehttp "github.com/fwojciec/siterag/http"
	"github.com/fwojciec/siterag/mcp"
	"golang.org/x/sync/errgroup"
)

// Run executes the serve command. It serves until the context is canceled
// or the listener fails.
func (c *ServeCmd) Run(deps *Dependencies) error {
	s := sitehttp.NewServer()
	s.Addr = c.Addr
	s.Organization = deps.Organization
	s.Asker = deps.Asker
	s.Logger = deps.Logger

	if err := s.Listen(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: cannot listen on %s: %v\n", c.Addr, err)
		return err
	}
	fmt.Fprintf(deps.Stdout, "Listening on %s\n", s.URL())
	if deps.Asker == nil {
		fmt.Fprintln(deps.Stderr, "warning: no generation model available; /ask will fail")
	}

	g, ctx := errgroup.WithContext(deps.Ctx)
	g.Go(s.Serve)
	g.Go(func() error {
		<-ctx.Done()
		return s.Close()
	})
	if err := g.Wait(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: server stopped: %v\n", err)
		return err
	}
	return nil
}

// Run executes the mcp command.
func (c *MCPCmd) Run(deps *Dependencies) error {
	s := mcp.NewServer(mcp.Config{Name: "siterag", Version: version}, deps.Retriever, deps.Asker)
	return s.Serve(deps.Ctx, deps.Stdin, deps.Stdout)
}
