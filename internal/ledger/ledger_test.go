package ledger

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"ammGovernance/internal/model"
	"ammGovernance/internal/programerr"
)

func openMem(t *testing.T) *Store {
	t.Helper()
	store, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newKey(t *testing.T) solana.PublicKey {
	t.Helper()
	pk, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return pk.PublicKey()
}

func TestCreateIsCreateOnce(t *testing.T) {
	store := openMem(t)
	key, owner := newKey(t), newKey(t)

	txn := store.Begin()
	require.NoError(t, txn.Create(key, Account{Owner: owner, Data: []byte{1}}))
	err := txn.Create(key, Account{Owner: owner, Data: []byte{2}})
	require.ErrorIs(t, err, programerr.ErrAccountAlreadyInUse)
	require.NoError(t, txn.Commit())

	txn = store.Begin()
	defer txn.Discard()
	require.ErrorIs(t, txn.Create(key, Account{Owner: owner}), programerr.ErrAccountAlreadyInUse)
}

func TestDiscardDropsWrites(t *testing.T) {
	store := openMem(t)
	key, owner := newKey(t), newKey(t)

	txn := store.Begin()
	require.NoError(t, txn.Create(key, Account{Owner: owner, Data: []byte{7}}))
	require.NoError(t, txn.SetSequence(9))
	require.NoError(t, txn.SetTimestamp(5))

	acc, ok, err := txn.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte{7}, acc.Data)

	txn.Discard()

	_, ok, err = store.Get(key)
	require.NoError(t, err)
	require.False(t, ok)
	_, ok, err = store.LastSequence()
	require.NoError(t, err)
	require.False(t, ok)
	_, ok, err = store.LastTimestamp()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCommitPersistsSequence(t *testing.T) {
	store := openMem(t)

	txn := store.Begin()
	require.NoError(t, txn.Create(newKey(t), Account{Owner: newKey(t)}))
	require.NoError(t, txn.SetSequence(3))
	require.NoError(t, txn.SetTimestamp(1_700_000_000))
	require.NoError(t, txn.Commit())
	require.ErrorIs(t, txn.Commit(), ErrTxnDone)

	seq, ok, err := store.LastSequence()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(3), seq)

	require.NoError(t, store.MarkSequence(4))
	seq, _, err = store.LastSequence()
	require.NoError(t, err)
	require.Equal(t, uint64(4), seq)

	ts, ok, err := store.LastTimestamp()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(1_700_000_000), ts)
}

func TestPutRequiresExistingAccount(t *testing.T) {
	store := openMem(t)
	txn := store.Begin()
	defer txn.Discard()

	err := txn.Put(newKey(t), Account{Owner: newKey(t)})
	require.ErrorIs(t, err, programerr.ErrAccountNotInitialized)
}

func TestTypedRecordChecks(t *testing.T) {
	store := openMem(t)
	program, key := newKey(t), newKey(t)

	pool := model.Pool{
		Authority:  key,
		TokenAMint: newKey(t),
		TokenBMint: newKey(t),
		FeeRate:    30,
		Bump:       254,
	}

	txn := store.Begin()
	require.NoError(t, Init(txn, key, program, pool))
	require.NoError(t, txn.Commit())

	txn = store.Begin()
	defer txn.Discard()

	var loaded model.Pool
	require.NoError(t, Load(txn, key, program, &loaded))
	require.Equal(t, pool, loaded)

	var wrongOwner model.Pool
	require.ErrorIs(t, Load(txn, key, newKey(t), &wrongOwner), programerr.ErrAccountOwnedByWrongProgram)

	var wrongType model.Proposal
	require.ErrorIs(t, Load(txn, key, program, &wrongType), programerr.ErrAccountDiscriminatorMismatch)

	var missing model.Pool
	require.ErrorIs(t, Load(txn, newKey(t), program, &missing), programerr.ErrAccountNotInitialized)
}

func TestForEachVisitsCommittedAccounts(t *testing.T) {
	store := openMem(t)
	owner := newKey(t)

	txn := store.Begin()
	for i := 0; i < 3; i++ {
		require.NoError(t, txn.Create(newKey(t), Account{Owner: owner, Data: []byte{byte(i)}}))
	}
	require.NoError(t, txn.SetSequence(1))
	require.NoError(t, txn.Commit())

	count := 0
	require.NoError(t, store.ForEach(func(_ solana.PublicKey, acc Account) error {
		require.Equal(t, owner, acc.Owner)
		count++
		return nil
	}))
	require.Equal(t, 3, count)
}
