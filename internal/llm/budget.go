package llm

import (
	"context"

	"golang.org/x/time/rate"
)

// TokenBudget paces completions against a tokens-per-minute provider quota.
// Each request waits until its estimated token cost fits the budget, so a
// burst of small requests flows freely while a large one absorbs the delay it
// actually needs.
type TokenBudget struct {
	limiter *rate.Limiter
}

// NewTokenBudget creates a budget for the given tokens-per-minute quota.
// A non-positive quota disables pacing.
func NewTokenBudget(tokensPerMinute int) *TokenBudget {
	if tokensPerMinute <= 0 {
		return &TokenBudget{}
	}
	perSecond := rate.Limit(float64(tokensPerMinute) / 60.0)
	return &TokenBudget{
		limiter: rate.NewLimiter(perSecond, tokensPerMinute),
	}
}

// Wait blocks until tokens fit the budget or ctx is done. Requests larger
// than a whole minute's quota are charged the full burst instead of being
// rejected.
func (b *TokenBudget) Wait(ctx context.Context, tokens int) error {
	if b.limiter == nil || tokens <= 0 {
		return nil
	}
	if burst := b.limiter.Burst(); tokens > burst {
		tokens = burst
	}
	return b.limiter.WaitN(ctx, tokens)
}
