package derive

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

var testProgram = solana.MustPublicKeyFromBase58("FqzkXZdwYjurnUKetJCAvaUw5WAqbwzU6gZEwydeEfqS")

func newKey(t *testing.T) solana.PublicKey {
	t.Helper()
	pk, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return pk.PublicKey()
}

func TestPoolAddressIsUnordered(t *testing.T) {
	a, b := newKey(t), newKey(t)

	ab, bumpAB, err := PoolAddress(testProgram, a, b)
	require.NoError(t, err)
	ba, bumpBA, err := PoolAddress(testProgram, b, a)
	require.NoError(t, err)

	require.Equal(t, ab, ba)
	require.Equal(t, bumpAB, bumpBA)
	require.NoError(t, Verify(testProgram, PoolSeeds(b, a), bumpAB, ab))
}

func TestProgramSignerMatchesDerivation(t *testing.T) {
	a, b := newKey(t), newKey(t)
	pool, bump, err := PoolAddress(testProgram, a, b)
	require.NoError(t, err)

	signer, err := ProgramSigner(testProgram, PoolSeeds(a, b), bump)
	require.NoError(t, err)
	require.True(t, signer.IsProgram())
	require.Equal(t, pool, signer.Key())

	other, err := ProgramSigner(newKey(t), PoolSeeds(a, b), bump)
	if err == nil {
		require.NotEqual(t, pool, other.Key())
	}
}

func TestProposalSeedsUseLittleEndianID(t *testing.T) {
	creator := newKey(t)
	seeds := ProposalSeeds(0x0102, creator)
	require.Equal(t, []byte{0x02, 0x01, 0, 0, 0, 0, 0, 0}, seeds[1])

	addr1, _, err := ProposalAddress(testProgram, 1, creator)
	require.NoError(t, err)
	addr2, _, err := ProposalAddress(testProgram, 2, creator)
	require.NoError(t, err)
	require.NotEqual(t, addr1, addr2)
}

func TestVerifyRejectsWrongAddress(t *testing.T) {
	voter, proposal := newKey(t), newKey(t)
	_, bump, err := VoteRecordAddress(testProgram, voter, proposal)
	require.NoError(t, err)

	require.Error(t, Verify(testProgram, VoteRecordSeeds(voter, proposal), bump, newKey(t)))
}

func TestVaultAddressPerMint(t *testing.T) {
	pool, mintA, mintB := newKey(t), newKey(t), newKey(t)
	va, err := VaultAddress(pool, mintA)
	require.NoError(t, err)
	vb, err := VaultAddress(pool, mintB)
	require.NoError(t, err)
	require.NotEqual(t, va, vb)
}
