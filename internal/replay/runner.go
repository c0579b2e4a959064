package replay

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"ammGovernance/internal/model"
	"ammGovernance/internal/runtime"
	"ammGovernance/internal/storage"
)

// RunConfig holds settings for a replay.
type RunConfig struct {
	FromSequence uint64
	ToSequence   uint64
	BatchSize    uint64
	MaxRetries   int
	RetryBackoff time.Duration
}

// Stats summarizes a replay.
type Stats struct {
	Applied  int
	Rejected int
	Skipped  int
}

// Runner executes recorded transactions and journals their outcome.
type Runner struct {
	cfg     RunConfig
	runtime *runtime.Runtime
	events  storage.Storage
	errs    storage.ErrorSink
	logger  *zap.Logger
	retry   retryPolicy
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, rt *runtime.Runtime, events storage.Storage, errs storage.ErrorSink, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:     cfg,
		runtime: rt,
		events:  events,
		errs:    errs,
		logger:  logger,
		retry:   newRetryPolicy(cfg, logger),
	}
}

// Run executes txs in sequence order, resuming after the last sequence the
// ledger has recorded.
func (r *Runner) Run(ctx context.Context, txs []model.TransactionRecord) (Stats, error) {
	var stats Stats
	if r.runtime == nil {
		return stats, fmt.Errorf("runtime is nil")
	}
	if r.events == nil {
		return stats, fmt.Errorf("storage is nil")
	}
	if r.cfg.BatchSize == 0 {
		return stats, fmt.Errorf("batch size must be greater than zero")
	}
	if len(txs) == 0 {
		r.logger.Info("nothing to replay")
		return stats, nil
	}
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Sequence < txs[j].Sequence })

	from := r.cfg.FromSequence
	to := r.cfg.ToSequence
	if to == 0 {
		to = txs[len(txs)-1].Sequence
	}

	last, ok, err := r.runtime.Store().LastSequence()
	if err != nil {
		return stats, err
	}
	if ok && last >= from {
		from = last + 1
		r.logger.Info("resume from ledger", zap.Uint64("last_sequence", last), zap.Uint64("from", from))
	}
	if from < txs[0].Sequence {
		from = txs[0].Sequence
	}

	if ok && last == ^uint64(0) || from > to {
		r.logger.Info("nothing to replay", zap.Uint64("from", from), zap.Uint64("to", to))
		stats.Skipped = len(txs)
		return stats, nil
	}

	ranges, err := SplitRange(from, to, r.cfg.BatchSize)
	if err != nil {
		return stats, err
	}

	next := sort.Search(len(txs), func(i int) bool { return txs[i].Sequence >= from })
	stats.Skipped = next
	for _, seqRange := range ranges {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		events := make([]model.TypedEvent, 0)
		var rejected []model.ExecutionError
		var halt error
		for ; next < len(txs) && txs[next].Sequence <= seqRange.To; next++ {
			tx := txs[next]
			event, err := r.runtime.Execute(ctx, tx)
			if err != nil {
				// Host failures leave the sequence unconsumed; stop after
				// journaling what this batch already applied.
				if runtime.IsHostError(err) {
					halt = fmt.Errorf("sequence %d: %w", tx.Sequence, err)
					break
				}
				rejected = append(rejected, runtime.ExecutionError(tx, err))
				stats.Rejected++
				r.logger.Warn("transaction rejected", zap.Uint64("sequence", tx.Sequence), zap.Error(err))
				continue
			}
			events = append(events, event)
			stats.Applied++
		}

		if err := r.putEventsWithRetry(ctx, events); err != nil {
			return stats, fmt.Errorf("store events: %w", err)
		}
		if err := r.putErrorsWithRetry(ctx, rejected); err != nil {
			return stats, fmt.Errorf("store errors: %w", err)
		}
		if halt != nil {
			return stats, halt
		}

		if len(events) > 0 || len(rejected) > 0 {
			r.logger.Info("batch complete",
				zap.Int("events", len(events)),
				zap.Int("rejected", len(rejected)),
				zap.Uint64("from", seqRange.From),
				zap.Uint64("to", seqRange.To),
			)
		}
		if next == len(txs) {
			break
		}
	}
	stats.Skipped += len(txs) - next

	return stats, nil
}

func (r *Runner) putEventsWithRetry(ctx context.Context, events []model.TypedEvent) error {
	if len(events) == 0 {
		return nil
	}
	return r.retry.do(ctx, "put_events", func() error {
		return r.events.PutEventBatch(events)
	})
}

func (r *Runner) putErrorsWithRetry(ctx context.Context, rejected []model.ExecutionError) error {
	if len(rejected) == 0 || r.errs == nil {
		return nil
	}
	return r.retry.do(ctx, "put_errors", func() error {
		return r.errs.PutErrorBatch(rejected)
	})
}
