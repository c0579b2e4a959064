package replay

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const maxRetryDelay = 5 * time.Second

// retryPolicy retries journal writes with doubling backoff capped at
// maxRetryDelay. Ledger state is already committed when a write fails, so
// giving up surfaces the error instead of dropping the batch.
type retryPolicy struct {
	maxRetries int
	baseDelay  time.Duration
	logger     *zap.Logger
}

func newRetryPolicy(cfg RunConfig, logger *zap.Logger) retryPolicy {
	p := retryPolicy{maxRetries: cfg.MaxRetries, baseDelay: cfg.RetryBackoff, logger: logger}
	if p.maxRetries < 0 {
		p.maxRetries = 0
	}
	if p.baseDelay <= 0 {
		p.baseDelay = 100 * time.Millisecond
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	return p
}

func (p retryPolicy) do(ctx context.Context, op string, fn func() error) error {
	delay := p.baseDelay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if attempt > p.maxRetries {
			return err
		}
		p.logger.Warn("journal write failed",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", delay),
			zap.Error(err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		if delay *= 2; delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}
}
