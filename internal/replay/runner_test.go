package replay

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"ammGovernance/internal/clock"
	"ammGovernance/internal/governance"
	"ammGovernance/internal/ledger"
	"ammGovernance/internal/model"
	"ammGovernance/internal/runtime"
	"ammGovernance/internal/storage"
)

type flakySink struct {
	failures int
	calls    int
	events   []model.TypedEvent
}

func (s *flakySink) PutEventBatch(events []model.TypedEvent) error {
	s.calls++
	if s.calls <= s.failures {
		return errors.New("sink unavailable")
	}
	s.events = append(s.events, events...)
	return nil
}

func governanceTxs(t *testing.T) []model.TransactionRecord {
	t.Helper()
	creator, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	voter, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	prog := governance.DefaultProgramID

	title, err := model.PadTitle("Treasury")
	require.NoError(t, err)
	create, err := governance.NewCreateProposalAccounts(prog, creator.PublicKey(), 9)
	require.NoError(t, err)
	creatorAccts, err := governance.NewCreatorAccounts(prog, creator.PublicKey(), 9)
	require.NoError(t, err)
	voteAccts, err := governance.NewVoteAccounts(prog, creator.PublicKey(), voter.PublicKey(), 9)
	require.NoError(t, err)

	build := func(seq uint64, ts int64, key solana.PrivateKey, name string, args, accts interface{}) model.TransactionRecord {
		tx, err := runtime.NewTransaction(prog, seq, name, args, accts)
		require.NoError(t, err)
		tx.Timestamp = ts
		require.NoError(t, runtime.Sign(&tx, key))
		return tx
	}

	return []model.TransactionRecord{
		build(1, 1000, creator, runtime.CreateProposal, governance.CreateProposalArgs{ProposalID: 9, Title: title, VotesNeededToPass: 1, VotingPeriod: 100}, create),
		build(2, 1001, creator, runtime.StartVoting, runtime.ProposalIDArgs{ProposalID: 9}, creatorAccts),
		build(3, 1002, voter, runtime.Vote, runtime.ProposalIDArgs{ProposalID: 9}, voteAccts),
		build(4, 1003, voter, runtime.Vote, runtime.ProposalIDArgs{ProposalID: 9}, voteAccts),
	}
}

func newStore(t *testing.T) *ledger.Store {
	t.Helper()
	store, err := ledger.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// newRuntime replays recorded timestamps; the host clock sits after all of them.
func newRuntime(t *testing.T) *runtime.Runtime {
	t.Helper()
	return newRuntimeWithClock(newStore(t), clock.NewManual(2000))
}

func newRuntimeWithClock(store *ledger.Store, clk clock.Clock) *runtime.Runtime {
	cfg := runtime.DefaultConfig()
	cfg.TrustRecordTimestamps = true
	return runtime.New(cfg, store, clk, nil)
}

type switchClock struct {
	now  int64
	down bool
}

func (c *switchClock) Now(context.Context) (int64, error) {
	if c.down {
		return 0, errors.New("rpc unavailable")
	}
	return c.now, nil
}

func TestRunnerReplaysAndResumes(t *testing.T) {
	rt := newRuntime(t)
	txs := governanceTxs(t)
	sink := &flakySink{failures: 1}
	errPath := filepath.Join(t.TempDir(), "errors.jsonl")
	errSink := storage.NewJsonlStorage(errPath)

	cfg := RunConfig{BatchSize: 2, MaxRetries: 2, RetryBackoff: time.Millisecond}
	stats, err := NewRunner(cfg, rt, sink, errSink, nil).Run(context.Background(), txs)
	require.NoError(t, err)
	require.Equal(t, Stats{Applied: 3, Rejected: 1}, stats)
	require.Len(t, sink.events, 3)
	require.Equal(t, model.EventVoteCast, sink.events[2].EventName)

	raw, err := os.ReadFile(errPath)
	require.NoError(t, err)
	var rejected model.ExecutionError
	require.NoError(t, json.Unmarshal(raw, &rejected))
	require.Equal(t, uint64(4), rejected.Sequence)
	require.Equal(t, "AlreadyVoted", rejected.Name)

	stats, err = NewRunner(cfg, rt, sink, errSink, nil).Run(context.Background(), txs)
	require.NoError(t, err)
	require.Equal(t, Stats{Skipped: 4}, stats)
	require.Len(t, sink.events, 3)
}

func TestRunnerHonorsSequenceBounds(t *testing.T) {
	rt := newRuntime(t)
	sink := &flakySink{}
	stats, err := NewRunner(RunConfig{ToSequence: 2, BatchSize: 10}, rt, sink, nil, nil).Run(context.Background(), governanceTxs(t))
	require.NoError(t, err)
	require.Equal(t, Stats{Applied: 2, Skipped: 2}, stats)

	last, ok, err := rt.Store().LastSequence()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(2), last)
}

func TestRunnerGivesUpAfterRetries(t *testing.T) {
	rt := newRuntime(t)
	sink := &flakySink{failures: 10}
	_, err := NewRunner(RunConfig{BatchSize: 10, MaxRetries: 1, RetryBackoff: time.Millisecond}, rt, sink, nil, nil).
		Run(context.Background(), governanceTxs(t))
	require.ErrorContains(t, err, "sink unavailable")
	require.Equal(t, 2, sink.calls)
}

func TestReadTransactions(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.jsonl")
	require.NoError(t, os.WriteFile(good, []byte(`{"sequence":1,"program":"p","data":"0x","signer":"s"}

{"sequence":3,"program":"p","data":"0x","signer":"s","accounts":{"pool":"x"}}
`), 0o644))
	txs, err := ReadTransactions(good)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	require.NotNil(t, txs[0].Accounts)
	require.Equal(t, "x", txs[1].Accounts["pool"])

	bad := filepath.Join(dir, "bad.jsonl")
	require.NoError(t, os.WriteFile(bad, []byte(`{"sequence":2}
{"sequence":2}
`), 0o644))
	_, err = ReadTransactions(bad)
	require.ErrorContains(t, err, "line 2")
}

func TestParseProgramID(t *testing.T) {
	key, err := ParseProgramID("", governance.DefaultProgramID)
	require.NoError(t, err)
	require.Equal(t, governance.DefaultProgramID, key)

	key, err = ParseProgramID(" "+governance.DefaultProgramID.String()+" ", solana.PublicKey{})
	require.NoError(t, err)
	require.Equal(t, governance.DefaultProgramID, key)

	_, err = ParseProgramID("not-base58!", solana.PublicKey{})
	require.Error(t, err)
}

func TestRunnerStopsOnHostFailureWithoutConsumingSequence(t *testing.T) {
	store := newStore(t)
	txs := governanceTxs(t)
	clk := &switchClock{now: 2000}
	rt := newRuntimeWithClock(store, clk)

	sink := &flakySink{}
	cfg := RunConfig{ToSequence: 2, BatchSize: 10}
	_, err := NewRunner(cfg, rt, sink, nil, nil).Run(context.Background(), txs)
	require.NoError(t, err)

	clk.down = true
	stats, err := NewRunner(RunConfig{BatchSize: 10}, rt, sink, nil, nil).Run(context.Background(), txs)
	require.ErrorContains(t, err, "rpc unavailable")
	require.True(t, runtime.IsHostError(err))
	require.Equal(t, Stats{Skipped: 2}, stats)

	last, ok, err := store.LastSequence()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(2), last)

	clk.down = false
	stats, err = NewRunner(RunConfig{BatchSize: 10}, rt, sink, nil, nil).Run(context.Background(), txs)
	require.NoError(t, err)
	require.Equal(t, Stats{Applied: 1, Rejected: 1, Skipped: 2}, stats)
	require.Len(t, sink.events, 3)
	require.Equal(t, model.EventVoteCast, sink.events[2].EventName)
}
