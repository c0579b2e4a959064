package aggregate

import (
	"context"

	"ammGovernance/internal/storage/postgres"
)

// DBStateStore keeps the checkpoint in the aggregator_state table, one row per
// window size so aggregations at different granularities resume independently.
type DBStateStore struct {
	Store         *postgres.Store
	WindowSeconds uint64
}

func (s *DBStateStore) name() string {
	return postgres.AggregatorStateName(s.WindowSeconds)
}

func (s *DBStateStore) Load(ctx context.Context) (Checkpoint, bool, error) {
	if s == nil || s.Store == nil {
		return Checkpoint{}, false, nil
	}
	ts, seq, ok, err := s.Store.LoadState(ctx, s.name())
	if err != nil || !ok {
		return Checkpoint{}, ok, err
	}
	return Checkpoint{Timestamp: ts, Sequence: seq}, true, nil
}

func (s *DBStateStore) Save(ctx context.Context, cp Checkpoint) error {
	if s == nil || s.Store == nil {
		return nil
	}
	return s.Store.SaveState(ctx, s.name(), cp.Timestamp, cp.Sequence)
}
