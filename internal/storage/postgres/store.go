package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ammGovernance/internal/model"
)

//go:embed schema.sql
var schema string

// Store provides Postgres persistence for snapshots and metrics.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the tables if they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// UpsertPools inserts or updates pool snapshots. Older snapshots never
// overwrite newer ones.
func (s *Store) UpsertPools(ctx context.Context, pools []model.PoolRecord) error {
	if len(pools) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, pool := range pools {
		batch.Queue(`
			INSERT INTO pools (
				pool_address, token_a_mint, token_b_mint, lp_mint, fee_rate,
				reserve_a, reserve_b, lp_supply, last_sequence, updated_ts, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
			ON CONFLICT (pool_address)
			DO UPDATE SET
				reserve_a = EXCLUDED.reserve_a,
				reserve_b = EXCLUDED.reserve_b,
				lp_supply = EXCLUDED.lp_supply,
				last_sequence = EXCLUDED.last_sequence,
				updated_ts = EXCLUDED.updated_ts,
				updated_at = now()
			WHERE pools.last_sequence <= EXCLUDED.last_sequence
		`,
			pool.Address,
			pool.TokenAMint,
			pool.TokenBMint,
			pool.LPMint,
			int32(pool.FeeRate),
			numeric(pool.ReserveA),
			numeric(pool.ReserveB),
			numeric(pool.LPSupply),
			int64(pool.LastSequence),
			pool.UpdatedAt,
		)
	}
	return s.sendBatch(ctx, batch, len(pools))
}

// UpsertProposals inserts or updates proposal snapshots.
func (s *Store) UpsertProposals(ctx context.Context, proposals []model.ProposalRecord) error {
	if len(proposals) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range proposals {
		batch.Queue(`
			INSERT INTO proposals (
				proposal_address, proposal_id, creator, title, status, votes_needed_to_pass,
				voting_count, voting_start, voting_period, last_sequence, updated_ts, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
			ON CONFLICT (proposal_address)
			DO UPDATE SET
				status = EXCLUDED.status,
				voting_count = EXCLUDED.voting_count,
				voting_start = EXCLUDED.voting_start,
				last_sequence = EXCLUDED.last_sequence,
				updated_ts = EXCLUDED.updated_ts,
				updated_at = now()
			WHERE proposals.last_sequence <= EXCLUDED.last_sequence
		`,
			p.Address,
			numeric(p.ID),
			p.Creator,
			p.Title,
			p.Status.String(),
			numeric(p.VotesNeededToPass),
			numeric(p.VotingCount),
			p.VotingStart,
			p.VotingPeriod,
			int64(p.LastSequence),
			p.UpdatedAt,
		)
	}
	return s.sendBatch(ctx, batch, len(proposals))
}

// UpsertWindowMetrics inserts or updates window metrics.
func (s *Store) UpsertWindowMetrics(ctx context.Context, metrics []model.PoolWindowMetrics) error {
	if len(metrics) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, m := range metrics {
		batch.Queue(`
			INSERT INTO pool_window_metrics (
				pool_address, window_size_seconds, window_start_ts, window_end_ts,
				swap_count, volume_a, volume_b, fee_a, fee_b, fee_rate_a, fee_rate_b,
				tvl_a, tvl_b, apr, fee_method, tvl_method, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,now(),now())
			ON CONFLICT (pool_address, window_size_seconds, window_start_ts)
			DO UPDATE SET
				window_end_ts = EXCLUDED.window_end_ts,
				swap_count = EXCLUDED.swap_count,
				volume_a = EXCLUDED.volume_a,
				volume_b = EXCLUDED.volume_b,
				fee_a = EXCLUDED.fee_a,
				fee_b = EXCLUDED.fee_b,
				fee_rate_a = EXCLUDED.fee_rate_a,
				fee_rate_b = EXCLUDED.fee_rate_b,
				tvl_a = EXCLUDED.tvl_a,
				tvl_b = EXCLUDED.tvl_b,
				apr = EXCLUDED.apr,
				fee_method = EXCLUDED.fee_method,
				tvl_method = EXCLUDED.tvl_method,
				updated_at = now()
		`,
			m.PoolAddress,
			m.WindowSizeSecs,
			m.WindowStart,
			m.WindowEnd,
			int64(m.SwapCount),
			m.VolumeA,
			m.VolumeB,
			m.FeeA,
			m.FeeB,
			m.FeeRateA,
			m.FeeRateB,
			m.TVLA,
			m.TVLB,
			m.APR,
			m.FeeMethod,
			m.TVLMethod,
		)
	}
	return s.sendBatch(ctx, batch, len(metrics))
}

func (s *Store) sendBatch(ctx context.Context, batch *pgx.Batch, n int) error {
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < n; i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// AggregatorStateName keys checkpoint rows by window size.
func AggregatorStateName(windowSeconds uint64) string {
	return "aggregator:" + strconv.FormatUint(windowSeconds, 10)
}

// LoadState returns the checkpoint stored under name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, uint64, bool, error) {
	if name == "" {
		return 0, 0, false, fmt.Errorf("state name required")
	}
	var ts, seq int64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_ts, last_sequence FROM aggregator_state WHERE name=$1`, name)
	if err := row.Scan(&ts, &seq); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, false, nil
		}
		return 0, 0, false, fmt.Errorf("load state %s: %w", name, err)
	}
	return uint64(ts), uint64(seq), true, nil
}

// SaveState upserts the checkpoint for name.
func (s *Store) SaveState(ctx context.Context, name string, ts, seq uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO aggregator_state (name, last_processed_ts, last_sequence, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_ts = EXCLUDED.last_processed_ts,
			last_sequence = EXCLUDED.last_sequence,
			updated_at = now()
	`, name, int64(ts), int64(seq))
	return err
}

// numeric renders u64 values as text so NUMERIC columns keep full range.
func numeric(v uint64) string {
	return strconv.FormatUint(v, 10)
}
