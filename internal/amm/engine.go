// Package amm implements the constant-product pool program.
package amm

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"ammGovernance/internal/derive"
	"ammGovernance/internal/ledger"
	"ammGovernance/internal/model"
	"ammGovernance/internal/programerr"
	"ammGovernance/internal/token"
)

// DefaultProgramID is the address the pool program is deployed at.
var DefaultProgramID = solana.MustPublicKeyFromBase58("FqzkXZdwYjurnUKetJCAvaUw5WAqbwzU6gZEwydeEfqS")

// Engine executes pool instructions against a ledger transaction.
type Engine struct {
	programID solana.PublicKey
	tokens    *token.Program
	logger    *zap.Logger
}

// NewEngine builds a pool engine.
func NewEngine(programID solana.PublicKey, tokens *token.Program, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tokens == nil {
		tokens = token.New()
	}
	return &Engine{programID: programID, tokens: tokens, logger: logger}
}

// ProgramID returns the pool program address.
func (e *Engine) ProgramID() solana.PublicKey { return e.programID }

// PoolState is a loaded pool with its live reserves.
type PoolState struct {
	Address   solana.PublicKey
	Pool      model.Pool
	ReserveA  uint64
	ReserveB  uint64
	LPSupply  uint64
	DecimalsA uint8
	DecimalsB uint8
}

// Meta returns the immutable metadata attached to pool events.
func (s PoolState) Meta() *model.PoolMeta {
	return &model.PoolMeta{
		TokenAMint: s.Pool.TokenAMint.String(),
		TokenBMint: s.Pool.TokenBMint.String(),
		LPMint:     s.Pool.LPMint.String(),
		FeeRate:    s.Pool.FeeRate,
		DecimalsA:  s.DecimalsA,
		DecimalsB:  s.DecimalsB,
	}
}

// LoadPool reads a pool and its reserves.
func (e *Engine) LoadPool(txn *ledger.Txn, key solana.PublicKey) (PoolState, error) {
	var pool model.Pool
	if err := ledger.Load(txn, key, e.programID, &pool); err != nil {
		return PoolState{}, err
	}
	if err := derive.Verify(e.programID, derive.PoolSeeds(pool.TokenAMint, pool.TokenBMint), pool.Bump, key); err != nil {
		return PoolState{}, fmt.Errorf("pool %s: %w", key, programerr.ErrConstraintSeeds)
	}

	vaultA, err := e.tokens.Account(txn, pool.TokenAVault)
	if err != nil {
		return PoolState{}, fmt.Errorf("vault a: %w", err)
	}
	vaultB, err := e.tokens.Account(txn, pool.TokenBVault)
	if err != nil {
		return PoolState{}, fmt.Errorf("vault b: %w", err)
	}
	lpMint, err := e.tokens.Mint(txn, pool.LPMint)
	if err != nil {
		return PoolState{}, fmt.Errorf("lp mint: %w", err)
	}
	mintA, err := e.tokens.Mint(txn, pool.TokenAMint)
	if err != nil {
		return PoolState{}, fmt.Errorf("mint a: %w", err)
	}
	mintB, err := e.tokens.Mint(txn, pool.TokenBMint)
	if err != nil {
		return PoolState{}, fmt.Errorf("mint b: %w", err)
	}

	return PoolState{
		Address:   key,
		Pool:      pool,
		ReserveA:  vaultA.Amount,
		ReserveB:  vaultB.Amount,
		LPSupply:  lpMint.Supply,
		DecimalsA: mintA.Decimals,
		DecimalsB: mintB.Decimals,
	}, nil
}

// poolSigner is the capability that moves funds out of the pool vaults.
func (e *Engine) poolSigner(pool model.Pool) (derive.Signer, error) {
	return derive.ProgramSigner(e.programID, derive.PoolSeeds(pool.TokenAMint, pool.TokenBMint), pool.Bump)
}

// checkPoolAccounts verifies the accounts passed alongside a pool.
func checkPoolAccounts(pool model.Pool, vaultA, vaultB, mintA, mintB solana.PublicKey) error {
	if !vaultA.Equals(pool.TokenAVault) || !vaultB.Equals(pool.TokenBVault) {
		return ErrInvalidPoolState
	}
	if !mintA.Equals(pool.TokenAMint) || !mintB.Equals(pool.TokenBMint) {
		return ErrInvalidTokenMint
	}
	return nil
}

// checkUserAccount verifies a user token account holds mint and belongs to user.
func (e *Engine) checkUserAccount(txn *ledger.Txn, key, mint, user solana.PublicKey) error {
	acc, err := e.tokens.Account(txn, key)
	if err != nil {
		return err
	}
	if !acc.Mint.Equals(mint) {
		return ErrInvalidTokenMint
	}
	if !acc.Owner.Equals(user) {
		return ErrUnauthorized
	}
	return nil
}
