package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"ammGovernance/internal/model"
)

func TestJsonlStorageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "events.jsonl")
	s := NewJsonlStorage(path)

	require.NoError(t, s.PutEventBatch(nil))
	require.NoError(t, s.PutEventBatch([]model.TypedEvent{
		{Sequence: 1, EventName: model.EventSwap, Decoded: model.SwapEventData{AmountIn: 100, AmountInEff: 99}},
	}))
	require.NoError(t, s.PutEventBatch([]model.TypedEvent{
		{Sequence: 2, EventName: model.EventVoteCast, Decoded: model.VoteCastData{VotingCount: 1}},
	}))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var seqs []uint64
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var rec model.TypedEventRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		seqs = append(seqs, rec.Sequence)
	}
	require.NoError(t, scanner.Err())
	require.Equal(t, []uint64{1, 2}, seqs)
}

func TestJsonlStorageErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.jsonl")
	s := NewJsonlStorage(path)
	code := uint32(6002)
	require.NoError(t, s.PutErrorBatch([]model.ExecutionError{{Sequence: 3, Code: &code, Name: "AlreadyVoted", Error: "boom"}}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var rec model.ExecutionError
	require.NoError(t, json.Unmarshal(raw, &rec))
	require.Equal(t, uint32(6002), *rec.Code)
	require.Equal(t, "AlreadyVoted", rec.Name)
}
