package mock

import (
	"context"

	"github.com/fwojciec/siterag"
)

var (
	_ siterag.TokenCounter = (*TokenCounter)(nil)
	_ siterag.HostLimiter  = (*HostLimiter)(nil)
)

// TokenCounter is a mock implementation of siterag.TokenCounter.
type TokenCounter struct {
	CountTokensFn func(ctx context.Context, text string) (int, error)
}

func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	return tc.CountTokensFn(ctx, text)
}

// HostLimiter is a mock implementation of siterag.HostLimiter.
type HostLimiter struct {
	WaitFn func(ctx context.Context, host string) error
}

func (l *HostLimiter) Wait(ctx context.Context, host string) error {
	return l.WaitFn(ctx, host)
}
