package main_test

import (
	"context"
	"strings"
	"testing"

	main "github.com/fwojciec/siterag/cmd/siterag"
	"github.com/fwojciec/siterag/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("serves until the context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		deps, stdout, stderr := newDeps()
		deps.Ctx = ctx
		deps.Asker = &mock.Asker{}

		err := (&main.ServeCmd{Addr: "127.0.0.1:0"}).Run(deps)

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(stdout.String(), "Listening on http://127.0.0.1:"))
		assert.Empty(t, stderr.String())
	})

	t.Run("warns when no model is available", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		deps, _, stderr := newDeps()
		deps.Ctx = ctx

		require.NoError(t, (&main.ServeCmd{Addr: "127.0.0.1:0"}).Run(deps))
		assert.Contains(t, stderr.String(), "no generation model available")
	})

	t.Run("fails on a bad address", func(t *testing.T) {
		t.Parallel()

		deps, _, stderr := newDeps()

		err := (&main.ServeCmd{Addr: "256.0.0.1:bad"}).Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "cannot listen on")
	})
}
