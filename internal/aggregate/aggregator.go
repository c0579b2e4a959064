package aggregate

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"ammGovernance/internal/model"
)

const (
	feeMethodExact    = "amount_in_minus_eff"
	tvlMethodReserves = "post_event_reserves"
	tvlMethodNone     = "unavailable"
)

// Sink receives aggregated records.
type Sink interface {
	UpsertPools(ctx context.Context, pools []model.PoolRecord) error
	UpsertProposals(ctx context.Context, proposals []model.ProposalRecord) error
	UpsertWindowMetrics(ctx context.Context, metrics []model.PoolWindowMetrics) error
}

// Config controls aggregation behavior.
type Config struct {
	WindowSeconds uint64
	BatchSize     int
	RecomputeFrom uint64
	StateStore    StateStore
}

// Aggregator aggregates typed events into pool window metrics and
// pool/proposal snapshots.
type Aggregator struct {
	cfg          Config
	store        Sink
	logger       *zap.Logger
	accumulators map[string]*Accumulator
	snapshots    *Snapshots
	lastSeq      uint64
}

func NewAggregator(cfg Config, store Sink, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Aggregator{
		cfg:          cfg,
		store:        store,
		logger:       logger,
		accumulators: make(map[string]*Accumulator),
		snapshots:    NewSnapshots(),
	}
}

// Run executes aggregation over a typed events JSONL file.
func (a *Aggregator) Run(ctx context.Context, inputPath string) error {
	if a.store == nil {
		return fmt.Errorf("store is nil")
	}
	if a.cfg.WindowSeconds == 0 {
		return fmt.Errorf("window seconds must be > 0")
	}
	if a.cfg.BatchSize <= 0 {
		a.cfg.BatchSize = 1000
	}

	checkpoint, err := a.loadCheckpoint(ctx)
	if err != nil {
		return err
	}
	startTs := checkpoint.Timestamp

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	batch := make([]model.PoolWindowMetrics, 0, a.cfg.BatchSize)
	maxTs := startTs
	var total, windows, skipped, failed int

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		total++

		var record model.TypedEventRecord
		if err := json.Unmarshal(line, &record); err != nil {
			failed++
			a.logger.Warn("decode typed event", zap.Error(err))
			continue
		}

		// Snapshots fold every event so replays after a restart stay complete.
		if record.Sequence > a.lastSeq {
			a.lastSeq = record.Sequence
		}
		if err := a.snapshots.Apply(record); err != nil {
			failed++
			a.logger.Warn("snapshot event", zap.Error(err), zap.String("address", record.Address), zap.String("event", record.EventName))
			continue
		}

		if record.Timestamp <= 0 || uint64(record.Timestamp) <= startTs || !isPoolEvent(record.EventName) {
			skipped++
			continue
		}
		ts := uint64(record.Timestamp)

		windowStart := windowStart(ts, a.cfg.WindowSeconds)
		windowEnd := windowStart + a.cfg.WindowSeconds

		acc := a.accumulators[record.Address]
		if acc == nil {
			acc = a.newAccumulator(record, nil, windowStart, windowEnd)
		} else if acc.WindowStart != windowStart {
			if metrics := a.flushAccumulator(acc); metrics != nil {
				batch = append(batch, *metrics)
				windows++
			}
			acc = a.newAccumulator(record, acc, windowStart, windowEnd)
		}

		if err := acc.AddEvent(record); err != nil {
			failed++
			a.logger.Warn("aggregate event", zap.Error(err), zap.String("pool", record.Address), zap.String("event", record.EventName))
			continue
		}

		if ts > maxTs {
			maxTs = ts
		}

		if len(batch) >= a.cfg.BatchSize {
			if err := a.flushBatches(ctx, batch); err != nil {
				return err
			}
			batch = batch[:0]

			if err := a.saveState(ctx); err != nil {
				return err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan input: %w", err)
	}

	for _, acc := range a.accumulators {
		if metrics := a.flushAccumulator(acc); metrics != nil {
			batch = append(batch, *metrics)
			windows++
		}
	}
	a.accumulators = make(map[string]*Accumulator)

	if err := a.flushBatches(ctx, batch); err != nil {
		return err
	}

	if a.lastSeq < checkpoint.Sequence {
		a.logger.Warn("journal ends before checkpoint",
			zap.Uint64("journal_sequence", a.lastSeq),
			zap.Uint64("checkpoint_sequence", checkpoint.Sequence),
		)
	}

	a.cfg.RecomputeFrom = maxTs
	if err := a.saveState(ctx); err != nil {
		return err
	}

	a.logger.Info("aggregate complete",
		zap.Int("total", total),
		zap.Int("windows", windows),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
		zap.Uint64("last_sequence", a.lastSeq),
	)

	return nil
}

// Snapshots exposes the folded pool and proposal state.
func (a *Aggregator) Snapshots() *Snapshots { return a.snapshots }

// newAccumulator opens a window for record's pool. Reserves carry over from
// the previous window so a window without liquidity events still has a TVL.
func (a *Aggregator) newAccumulator(record model.TypedEventRecord, prev *Accumulator, windowStart, windowEnd uint64) *Accumulator {
	acc := NewAccumulator(record, windowStart, windowEnd)
	if prev != nil {
		acc.ReserveA, acc.ReserveB = prev.ReserveA, prev.ReserveB
		if acc.PoolMeta.TokenAMint == "" {
			acc.PoolMeta = prev.PoolMeta
		}
	}
	a.accumulators[record.Address] = acc
	return acc
}

// loadCheckpoint resolves where windows resume. An explicit recompute
// timestamp wins over the stored checkpoint.
func (a *Aggregator) loadCheckpoint(ctx context.Context) (Checkpoint, error) {
	if a.cfg.RecomputeFrom > 0 {
		return Checkpoint{Timestamp: a.cfg.RecomputeFrom - 1}, nil
	}
	if a.cfg.StateStore == nil {
		return Checkpoint{}, nil
	}
	cp, ok, err := a.cfg.StateStore.Load(ctx)
	if err != nil {
		return Checkpoint{}, fmt.Errorf("load checkpoint: %w", err)
	}
	if !ok {
		return Checkpoint{}, nil
	}
	return cp, nil
}

func (a *Aggregator) saveState(ctx context.Context) error {
	if a.cfg.StateStore == nil {
		return nil
	}

	if len(a.accumulators) == 0 {
		return a.cfg.StateStore.Save(ctx, Checkpoint{Timestamp: a.cfg.RecomputeFrom, Sequence: a.lastSeq})
	}

	safeTs := minOpenWindowStart(a.accumulators)
	if safeTs > 0 {
		safeTs = safeTs - 1
	}
	if safeTs == 0 {
		safeTs = a.cfg.RecomputeFrom
	}
	return a.cfg.StateStore.Save(ctx, Checkpoint{Timestamp: safeTs, Sequence: a.lastSeq})
}

func (a *Aggregator) flushBatches(ctx context.Context, batch []model.PoolWindowMetrics) error {
	pools, proposals := a.snapshots.Drain()
	if len(pools) > 0 {
		if err := a.store.UpsertPools(ctx, pools); err != nil {
			return fmt.Errorf("upsert pools: %w", err)
		}
	}
	if len(proposals) > 0 {
		if err := a.store.UpsertProposals(ctx, proposals); err != nil {
			return fmt.Errorf("upsert proposals: %w", err)
		}
	}
	if len(batch) > 0 {
		if err := a.store.UpsertWindowMetrics(ctx, batch); err != nil {
			return fmt.Errorf("upsert window metrics: %w", err)
		}
	}
	return nil
}

func (a *Aggregator) flushAccumulator(acc *Accumulator) *model.PoolWindowMetrics {
	if acc == nil {
		return nil
	}

	meta := acc.PoolMeta
	if meta.TokenAMint == "" || meta.TokenBMint == "" {
		a.logger.Warn("missing pool meta", zap.String("pool", acc.PoolAddress))
		return nil
	}

	var tvlA, tvlB *string
	tvlMethod := tvlMethodNone
	if acc.ReserveA != nil && acc.ReserveB != nil {
		valA := formatTokenAmount(acc.ReserveA, meta.DecimalsA)
		valB := formatTokenAmount(acc.ReserveB, meta.DecimalsB)
		tvlA, tvlB = &valA, &valB
		tvlMethod = tvlMethodReserves
	}

	feeRateA, feeRateB := computeFeeRates(acc.FeeA, acc.FeeB, acc.ReserveA, acc.ReserveB)
	apr := computeAPR(feeRateA, feeRateB, a.cfg.WindowSeconds)

	return &model.PoolWindowMetrics{
		PoolAddress:    acc.PoolAddress,
		WindowSizeSecs: int64(a.cfg.WindowSeconds),
		WindowStart:    time.Unix(int64(acc.WindowStart), 0).UTC(),
		WindowEnd:      time.Unix(int64(acc.WindowEnd), 0).UTC(),
		SwapCount:      acc.SwapCount,
		VolumeA:        formatTokenAmount(acc.VolumeA, meta.DecimalsA),
		VolumeB:        formatTokenAmount(acc.VolumeB, meta.DecimalsB),
		FeeA:           formatTokenAmount(acc.FeeA, meta.DecimalsA),
		FeeB:           formatTokenAmount(acc.FeeB, meta.DecimalsB),
		FeeRateA:       feeRateA,
		FeeRateB:       feeRateB,
		TVLA:           tvlA,
		TVLB:           tvlB,
		APR:            apr,
		FeeMethod:      feeMethodExact,
		TVLMethod:      tvlMethod,
	}
}

func isPoolEvent(name string) bool {
	switch name {
	case model.EventSwap, model.EventLiquidityAdded, model.EventLiquidityRemoved, model.EventPoolInitialized:
		return true
	default:
		return false
	}
}

func windowStart(ts uint64, windowSec uint64) uint64 {
	return ts - (ts % windowSec)
}

func minOpenWindowStart(acc map[string]*Accumulator) uint64 {
	var min uint64
	for _, entry := range acc {
		if entry == nil {
			continue
		}
		if min == 0 || entry.WindowStart < min {
			min = entry.WindowStart
		}
	}
	return min
}
