package aggregate

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"ammGovernance/internal/model"
)

type memorySink struct {
	pools     map[string]model.PoolRecord
	proposals map[string]model.ProposalRecord
	metrics   []model.PoolWindowMetrics
}

func newMemorySink() *memorySink {
	return &memorySink{
		pools:     make(map[string]model.PoolRecord),
		proposals: make(map[string]model.ProposalRecord),
	}
}

func (s *memorySink) UpsertPools(_ context.Context, pools []model.PoolRecord) error {
	for _, p := range pools {
		s.pools[p.Address] = p
	}
	return nil
}

func (s *memorySink) UpsertProposals(_ context.Context, proposals []model.ProposalRecord) error {
	for _, p := range proposals {
		s.proposals[p.Address] = p
	}
	return nil
}

func (s *memorySink) UpsertWindowMetrics(_ context.Context, metrics []model.PoolWindowMetrics) error {
	s.metrics = append(s.metrics, metrics...)
	return nil
}

const (
	poolAddr     = "PooL1111111111111111111111111111111111111111"
	proposalAddr = "Prop1111111111111111111111111111111111111111"
)

var testMeta = &model.PoolMeta{TokenAMint: "MintA", TokenBMint: "MintB", LPMint: "LP", FeeRate: 100}

func poolEvent(seq uint64, ts int64, name string, data interface{}) model.TypedEvent {
	return model.TypedEvent{Sequence: seq, Address: poolAddr, EventName: name, Timestamp: ts, Decoded: data, PoolMeta: testMeta}
}

func proposalEvent(seq uint64, ts int64, name string, data interface{}) model.TypedEvent {
	return model.TypedEvent{Sequence: seq, Address: proposalAddr, EventName: name, Timestamp: ts, Decoded: data}
}

func writeEvents(t *testing.T, events []model.TypedEvent) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.jsonl")
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()
	enc := json.NewEncoder(file)
	for _, ev := range events {
		require.NoError(t, enc.Encode(ev))
	}
	return path
}

func TestAggregatorWindowsAndSnapshots(t *testing.T) {
	input := writeEvents(t, []model.TypedEvent{
		poolEvent(1, 3600, model.EventPoolInitialized, model.PoolInitializedData{Pool: poolAddr, FeeRate: 100}),
		poolEvent(2, 3601, model.EventLiquidityAdded, model.LiquidityAddedData{AmountA: 1000, AmountB: 2000, LPMinted: 1414, ReserveA: 1000, ReserveB: 2000, LPSupply: 1414}),
		poolEvent(3, 3602, model.EventSwap, model.SwapEventData{AToB: true, AmountIn: 100, AmountInEff: 99, AmountOut: 180, ReserveA: 1100, ReserveB: 1820}),
		poolEvent(4, 3700, model.EventSwap, model.SwapEventData{AToB: false, AmountIn: 200, AmountInEff: 198, AmountOut: 110, ReserveA: 990, ReserveB: 2020}),
		proposalEvent(5, 3800, model.EventProposalCreated, model.ProposalCreatedData{ID: 1, Creator: "C", Title: "t", VotesNeededToPass: 1, VotingPeriod: 60}),
		proposalEvent(6, 3801, model.EventVotingStarted, model.VotingStartedData{VotingStart: 3801, VotingEnd: 3861}),
		proposalEvent(7, 3802, model.EventVoteCast, model.VoteCastData{VotingCount: 1}),
		proposalEvent(8, 3900, model.EventVotingFinalized, model.VotingFinalizedData{Status: model.ProposalPassed, VotingCount: 1, VotesNeededToPass: 1}),
		poolEvent(9, 7300, model.EventSwap, model.SwapEventData{AToB: true, AmountIn: 10, AmountInEff: 9, AmountOut: 18, ReserveA: 1000, ReserveB: 2002}),
	})

	sink := newMemorySink()
	state := &FileStateStore{Path: filepath.Join(t.TempDir(), "state.json")}
	agg := NewAggregator(Config{WindowSeconds: 3600, StateStore: state}, sink, nil)
	require.NoError(t, agg.Run(context.Background(), input))

	require.Len(t, sink.metrics, 2)
	first, second := sink.metrics[0], sink.metrics[1]
	require.Equal(t, int64(3600), first.WindowStart.Unix())
	require.Equal(t, uint64(2), first.SwapCount)
	require.Equal(t, "210", first.VolumeA)
	require.Equal(t, "380", first.VolumeB)
	require.Equal(t, "1", first.FeeA)
	require.Equal(t, "2", first.FeeB)
	require.Equal(t, "990", *first.TVLA)
	require.Equal(t, "2020", *first.TVLB)
	require.NotNil(t, first.FeeRateA)
	require.NotNil(t, first.APR)
	require.Equal(t, feeMethodExact, first.FeeMethod)
	require.Equal(t, tvlMethodReserves, first.TVLMethod)

	require.Equal(t, int64(7200), second.WindowStart.Unix())
	require.Equal(t, uint64(1), second.SwapCount)
	require.Equal(t, "1", second.FeeA)
	require.Equal(t, "0", second.FeeB)
	require.Nil(t, second.FeeRateB)

	pool := sink.pools[poolAddr]
	require.Equal(t, "MintA", pool.TokenAMint)
	require.Equal(t, uint64(1000), pool.ReserveA)
	require.Equal(t, uint64(2002), pool.ReserveB)
	require.Equal(t, uint64(1414), pool.LPSupply)
	require.Equal(t, uint64(9), pool.LastSequence)

	pools, proposals := agg.Snapshots().Counts()
	require.Equal(t, 1, pools)
	require.Equal(t, 1, proposals)

	proposal := sink.proposals[proposalAddr]
	require.Equal(t, model.ProposalPassed, proposal.Status)
	require.Equal(t, uint64(1), proposal.VotingCount)
	require.Equal(t, int64(3801), proposal.VotingStart)
	require.Equal(t, int64(60), proposal.VotingPeriod)

	cp, ok, err := state.Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(7300), cp.Timestamp)
	require.Equal(t, uint64(9), cp.Sequence)
}

func TestAggregatorResumesAfterState(t *testing.T) {
	input := writeEvents(t, []model.TypedEvent{
		poolEvent(1, 100, model.EventSwap, model.SwapEventData{AToB: true, AmountIn: 10, AmountInEff: 9, AmountOut: 5, ReserveA: 110, ReserveB: 95}),
		poolEvent(2, 200, model.EventSwap, model.SwapEventData{AToB: true, AmountIn: 10, AmountInEff: 9, AmountOut: 4, ReserveA: 120, ReserveB: 91}),
	})
	statePath := filepath.Join(t.TempDir(), "state.json")
	state := &FileStateStore{Path: statePath}
	require.NoError(t, state.Save(context.Background(), Checkpoint{Timestamp: 150, Sequence: 1}))

	sink := newMemorySink()
	require.NoError(t, NewAggregator(Config{WindowSeconds: 60, StateStore: state}, sink, nil).Run(context.Background(), input))
	require.Len(t, sink.metrics, 1)
	require.Equal(t, int64(180), sink.metrics[0].WindowStart.Unix())
	require.Equal(t, uint64(1), sink.metrics[0].SwapCount)
}

func TestAccumulatorSwapDirections(t *testing.T) {
	acc := NewAccumulator(model.TypedEventRecord{Address: poolAddr, PoolMeta: testMeta}, 0, 60)

	record := func(data model.SwapEventData) model.TypedEventRecord {
		raw, err := json.Marshal(data)
		require.NoError(t, err)
		return model.TypedEventRecord{Address: poolAddr, EventName: model.EventSwap, Decoded: raw}
	}

	require.NoError(t, acc.AddEvent(record(model.SwapEventData{AToB: true, AmountIn: 1000, AmountInEff: 990, AmountOut: 500})))
	require.NoError(t, acc.AddEvent(record(model.SwapEventData{AToB: false, AmountIn: 300, AmountInEff: 297, AmountOut: 600})))
	require.Equal(t, "1600", acc.VolumeA.String())
	require.Equal(t, "800", acc.VolumeB.String())
	require.Equal(t, "10", acc.FeeA.String())
	require.Equal(t, "3", acc.FeeB.String())
	require.Equal(t, uint64(2), acc.SwapCount)

	err := acc.AddEvent(record(model.SwapEventData{AmountIn: 1, AmountInEff: 2}))
	require.Error(t, err)
	require.Equal(t, uint64(2), acc.SwapCount)
}

func TestComputeAPR(t *testing.T) {
	rate := "0.001"
	apr := computeAPR(&rate, &rate, 365*24*3600)
	require.NotNil(t, apr)
	require.Equal(t, "0.001000000000000000", *apr)
	require.Nil(t, computeAPR(nil, nil, 60))
	require.Nil(t, computeAPR(&rate, nil, 0))
}
