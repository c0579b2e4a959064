// Package derive computes program-derived account addresses and the
// signer capabilities presented to the token ledger.
package derive

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	PoolSeed        = []byte("pool")
	LPMintSeed      = []byte("lp_mint")
	ProposalSeed    = []byte("proposal")
	VoterRecordSeed = []byte("voter_record")
)

// SortMints orders a mint pair canonically.
func SortMints(a, b solana.PublicKey) (solana.PublicKey, solana.PublicKey) {
	if bytes.Compare(a[:], b[:]) > 0 {
		return b, a
	}
	return a, b
}

// PoolSeeds returns the pool seeds for an unordered mint pair.
func PoolSeeds(mintA, mintB solana.PublicKey) [][]byte {
	lo, hi := SortMints(mintA, mintB)
	return [][]byte{PoolSeed, lo.Bytes(), hi.Bytes()}
}

// PoolAddress derives the pool account. (A, B) and (B, A) yield the same address.
func PoolAddress(programID, mintA, mintB solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(PoolSeeds(mintA, mintB), programID)
}

// LPMintSeeds returns the LP mint seeds of a pool.
func LPMintSeeds(pool solana.PublicKey) [][]byte {
	return [][]byte{LPMintSeed, pool.Bytes()}
}

// LPMintAddress derives the LP mint of a pool.
func LPMintAddress(programID, pool solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(LPMintSeeds(pool), programID)
}

// VaultAddress derives the associated token account of owner for mint.
func VaultAddress(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	return addr, err
}

// ProposalSeeds returns the proposal seeds; the id is little-endian.
func ProposalSeeds(id uint64, creator solana.PublicKey) [][]byte {
	idBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(idBytes, id)
	return [][]byte{ProposalSeed, idBytes, creator.Bytes()}
}

// ProposalAddress derives a proposal account.
func ProposalAddress(programID solana.PublicKey, id uint64, creator solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(ProposalSeeds(id, creator), programID)
}

// VoteRecordSeeds returns the vote record seeds.
func VoteRecordSeeds(voter, proposal solana.PublicKey) [][]byte {
	return [][]byte{VoterRecordSeed, voter.Bytes(), proposal.Bytes()}
}

// VoteRecordAddress derives the vote record of voter on proposal.
func VoteRecordAddress(programID, voter, proposal solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(VoteRecordSeeds(voter, proposal), programID)
}

// Verify checks that addr is the program address for seeds and bump.
func Verify(programID solana.PublicKey, seeds [][]byte, bump uint8, addr solana.PublicKey) error {
	got, err := solana.CreateProgramAddress(withBump(seeds, bump), programID)
	if err != nil {
		return fmt.Errorf("create program address: %w", err)
	}
	if !got.Equals(addr) {
		return fmt.Errorf("address %s does not match seeds (want %s)", addr, got)
	}
	return nil
}

func withBump(seeds [][]byte, bump uint8) [][]byte {
	out := make([][]byte, 0, len(seeds)+1)
	out = append(out, seeds...)
	return append(out, []byte{bump})
}
