package genai

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Bounded wraps a Generator with a per-call timeout and a process-wide rate
// limit. The generation model is the slowest and most expensive dependency in
// the cascade, so every call through here is bounded.
type Bounded struct {
	inner   Generator
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewBounded wraps inner. A zero timeout disables the deadline; a
// non-positive ratePerSecond disables throttling. A zero-rate limiter would
// otherwise never admit a call.
func NewBounded(inner Generator, timeout time.Duration, ratePerSecond float64, logger *zap.Logger) *Bounded {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Limit(ratePerSecond)
	if ratePerSecond <= 0 {
		limit = rate.Inf
	}
	return &Bounded{
		inner:   inner,
		timeout: timeout,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// Generate waits for a rate-limiter slot, then calls the wrapped generator
// under the configured deadline.
func (b *Bounded) Generate(ctx context.Context, prompt string) (string, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return "", err
	}

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := b.inner.Generate(ctx, prompt)
	if err != nil {
		b.logger.Warn("generation failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return "", err
	}
	return out, nil
}

var _ Generator = (*Bounded)(nil)
