package token

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"ammGovernance/internal/derive"
	"ammGovernance/internal/ledger"
)

type fixture struct {
	store *ledger.Store
	prog  *Program
	mint  solana.PublicKey
	auth  solana.PublicKey
}

func newKey(t *testing.T) solana.PublicKey {
	t.Helper()
	pk, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return pk.PublicKey()
}

func setup(t *testing.T) fixture {
	t.Helper()
	store, err := ledger.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	f := fixture{store: store, prog: New(), mint: newKey(t), auth: newKey(t)}
	txn := store.Begin()
	require.NoError(t, f.prog.InitializeMint(txn, f.mint, f.auth, 6))
	require.NoError(t, txn.Commit())
	return f
}

func TestMintTransferBurn(t *testing.T) {
	f := setup(t)
	alice, bob := newKey(t), newKey(t)

	txn := f.store.Begin()
	defer txn.Discard()

	aliceAcc, err := f.prog.InitializeAssociatedAccount(txn, f.mint, alice)
	require.NoError(t, err)
	bobAcc, err := f.prog.InitializeAssociatedAccount(txn, f.mint, bob)
	require.NoError(t, err)

	require.NoError(t, f.prog.MintTo(txn, f.mint, aliceAcc, derive.UserSigner(f.auth), 1000))
	require.NoError(t, f.prog.TransferChecked(txn, aliceAcc, bobAcc, f.mint, derive.UserSigner(alice), 400, 6))
	require.NoError(t, f.prog.Burn(txn, bobAcc, f.mint, derive.UserSigner(bob), 100))

	a, err := f.prog.Account(txn, aliceAcc)
	require.NoError(t, err)
	b, err := f.prog.Account(txn, bobAcc)
	require.NoError(t, err)
	m, err := f.prog.Mint(txn, f.mint)
	require.NoError(t, err)

	require.Equal(t, uint64(600), a.Amount)
	require.Equal(t, uint64(300), b.Amount)
	require.Equal(t, uint64(900), m.Supply)
}

func TestTransferRejections(t *testing.T) {
	f := setup(t)
	alice, bob := newKey(t), newKey(t)

	txn := f.store.Begin()
	defer txn.Discard()

	aliceAcc, err := f.prog.InitializeAssociatedAccount(txn, f.mint, alice)
	require.NoError(t, err)
	bobAcc, err := f.prog.InitializeAssociatedAccount(txn, f.mint, bob)
	require.NoError(t, err)
	require.NoError(t, f.prog.MintTo(txn, f.mint, aliceAcc, derive.UserSigner(f.auth), 10))

	require.ErrorIs(t, f.prog.TransferChecked(txn, aliceAcc, bobAcc, f.mint, derive.UserSigner(bob), 1, 6), ErrOwnerMismatch)
	require.ErrorIs(t, f.prog.TransferChecked(txn, aliceAcc, bobAcc, f.mint, derive.UserSigner(alice), 11, 6), ErrInsufficientFunds)
	require.ErrorIs(t, f.prog.TransferChecked(txn, aliceAcc, bobAcc, f.mint, derive.UserSigner(alice), 1, 9), ErrMintDecimalsMismatch)
	require.ErrorIs(t, f.prog.MintTo(txn, f.mint, aliceAcc, derive.UserSigner(alice), 1), ErrOwnerMismatch)

	otherMint := newKey(t)
	require.NoError(t, f.prog.InitializeMint(txn, otherMint, f.auth, 6))
	carolAcc, err := f.prog.InitializeAssociatedAccount(txn, otherMint, bob)
	require.NoError(t, err)
	require.ErrorIs(t, f.prog.TransferChecked(txn, aliceAcc, carolAcc, f.mint, derive.UserSigner(alice), 1, 6), ErrMintMismatch)
}

func TestProgramSignerMovesVaultFunds(t *testing.T) {
	f := setup(t)
	programID, user := newKey(t), newKey(t)
	seeds := [][]byte{[]byte("pool"), f.mint.Bytes()}
	pool, bump, err := solana.FindProgramAddress(seeds, programID)
	require.NoError(t, err)

	txn := f.store.Begin()
	defer txn.Discard()

	vault, err := f.prog.InitializeAssociatedAccount(txn, f.mint, pool)
	require.NoError(t, err)
	userAcc, err := f.prog.InitializeAssociatedAccount(txn, f.mint, user)
	require.NoError(t, err)
	require.NoError(t, f.prog.MintTo(txn, f.mint, vault, derive.UserSigner(f.auth), 50))

	signer, err := derive.ProgramSigner(programID, seeds, bump)
	require.NoError(t, err)
	require.NoError(t, f.prog.TransferChecked(txn, vault, userAcc, f.mint, signer, 20, 6))

	require.ErrorIs(t, f.prog.TransferChecked(txn, vault, userAcc, f.mint, derive.UserSigner(user), 1, 6), ErrOwnerMismatch)
}
