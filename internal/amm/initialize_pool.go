package amm

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"ammGovernance/internal/derive"
	"ammGovernance/internal/ledger"
	"ammGovernance/internal/model"
	"ammGovernance/internal/programerr"
)

// InitializePool creates the pool for a mint pair with its LP mint and vaults.
func (e *Engine) InitializePool(txn *ledger.Txn, accts InitializePoolAccounts, feeRate uint16) (model.Outcome, error) {
	if feeRate > MaxFeeRate {
		return model.Outcome{}, ErrInvalidFeeRate
	}
	if accts.TokenAMint.Equals(accts.TokenBMint) {
		return model.Outcome{}, ErrIdenticalMints
	}

	poolKey, bump, err := derive.PoolAddress(e.programID, accts.TokenAMint, accts.TokenBMint)
	if err != nil {
		return model.Outcome{}, fmt.Errorf("derive pool: %w", err)
	}
	if !poolKey.Equals(accts.Pool) {
		return model.Outcome{}, fmt.Errorf("pool %s: %w", accts.Pool, programerr.ErrConstraintSeeds)
	}
	exists, err := txn.Exists(poolKey)
	if err != nil {
		return model.Outcome{}, err
	}
	if exists {
		return model.Outcome{}, ErrPoolAlreadyInitialized
	}

	lpMint, lpBump, err := derive.LPMintAddress(e.programID, poolKey)
	if err != nil {
		return model.Outcome{}, fmt.Errorf("derive lp mint: %w", err)
	}
	if !lpMint.Equals(accts.LPMint) {
		return model.Outcome{}, fmt.Errorf("lp mint %s: %w", accts.LPMint, programerr.ErrConstraintSeeds)
	}

	mintA, err := e.tokens.Mint(txn, accts.TokenAMint)
	if err != nil {
		return model.Outcome{}, fmt.Errorf("mint a: %w", err)
	}
	mintB, err := e.tokens.Mint(txn, accts.TokenBMint)
	if err != nil {
		return model.Outcome{}, fmt.Errorf("mint b: %w", err)
	}

	pool := model.Pool{
		Authority:   accts.Payer,
		TokenAMint:  accts.TokenAMint,
		TokenBMint:  accts.TokenBMint,
		TokenAVault: accts.TokenAVault,
		TokenBVault: accts.TokenBVault,
		LPMint:      lpMint,
		FeeRate:     feeRate,
		Bump:        bump,
		LPMintBump:  lpBump,
	}
	if err := ledger.Init(txn, poolKey, e.programID, pool); err != nil {
		if errors.Is(err, programerr.ErrAccountAlreadyInUse) {
			return model.Outcome{}, ErrPoolAlreadyInitialized
		}
		return model.Outcome{}, err
	}
	if err := e.tokens.InitializeMint(txn, lpMint, poolKey, LPDecimals); err != nil {
		return model.Outcome{}, fmt.Errorf("init lp mint: %w", err)
	}

	vaultA, err := e.initVault(txn, accts.TokenAMint, poolKey)
	if err != nil {
		return model.Outcome{}, fmt.Errorf("init vault a: %w", err)
	}
	vaultB, err := e.initVault(txn, accts.TokenBMint, poolKey)
	if err != nil {
		return model.Outcome{}, fmt.Errorf("init vault b: %w", err)
	}
	if !vaultA.Equals(accts.TokenAVault) || !vaultB.Equals(accts.TokenBVault) {
		return model.Outcome{}, programerr.ErrConstraintAssociated
	}

	e.logger.Debug("pool initialized",
		zap.Stringer("pool", poolKey),
		zap.Stringer("mint_a", accts.TokenAMint),
		zap.Stringer("mint_b", accts.TokenBMint),
		zap.Uint16("fee_rate", feeRate),
	)

	state := PoolState{Address: poolKey, Pool: pool, DecimalsA: mintA.Decimals, DecimalsB: mintB.Decimals}
	return model.Outcome{
		Address:   poolKey.String(),
		EventName: model.EventPoolInitialized,
		Data: model.PoolInitializedData{
			Pool:        poolKey.String(),
			TokenAMint:  pool.TokenAMint.String(),
			TokenBMint:  pool.TokenBMint.String(),
			TokenAVault: pool.TokenAVault.String(),
			TokenBVault: pool.TokenBVault.String(),
			LPMint:      lpMint.String(),
			FeeRate:     feeRate,
		},
		PoolMeta: state.Meta(),
	}, nil
}

// initVault creates the pool's associated account for mint. Anyone may create
// an associated account for any owner, so an empty one already sitting at the
// address for this pool is adopted; anything else fails the pool.
func (e *Engine) initVault(txn *ledger.Txn, mint, pool solana.PublicKey) (solana.PublicKey, error) {
	addr, err := derive.VaultAddress(pool, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	exists, err := txn.Exists(addr)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if !exists {
		if err := e.tokens.InitializeAccount(txn, addr, mint, pool); err != nil {
			return solana.PublicKey{}, err
		}
		return addr, nil
	}

	acc, err := e.tokens.Account(txn, addr)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("existing vault %s: %w", addr, err)
	}
	if !acc.Mint.Equals(mint) || !acc.Owner.Equals(pool) || acc.Amount != 0 {
		return solana.PublicKey{}, fmt.Errorf("existing vault %s (owner %s, amount %d): %w",
			addr, acc.Owner, acc.Amount, programerr.ErrConstraintAssociated)
	}
	e.logger.Debug("adopting pre-created vault", zap.Stringer("vault", addr), zap.Stringer("pool", pool))
	return addr, nil
}
