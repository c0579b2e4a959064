package amm

import (
	"fmt"

	"go.uber.org/zap"

	"ammGovernance/internal/derive"
	"ammGovernance/internal/ledger"
	"ammGovernance/internal/model"
	"ammGovernance/internal/programerr"
)

// AddLiquidity deposits both tokens and mints LP tokens to the user.
func (e *Engine) AddLiquidity(txn *ledger.Txn, accts LiquidityAccounts, amountA, amountB, minLPTokens uint64) (model.Outcome, error) {
	state, err := e.loadLiquidityState(txn, accts)
	if err != nil {
		return model.Outcome{}, err
	}

	if amountA == 0 || amountB == 0 {
		return model.Outcome{}, ErrInvalidAmount
	}

	lp, err := QuoteDeposit(amountA, amountB, state.ReserveA, state.ReserveB, state.LPSupply)
	if err != nil {
		return model.Outcome{}, err
	}
	if lp < minLPTokens {
		return model.Outcome{}, ErrSlippageExceeded
	}
	if lp == 0 {
		return model.Outcome{}, ErrInvalidAmount
	}

	pool := state.Pool
	user := derive.UserSigner(accts.User)
	if err := e.tokens.TransferChecked(txn, accts.UserTokenA, pool.TokenAVault, pool.TokenAMint, user, amountA, state.DecimalsA); err != nil {
		return model.Outcome{}, fmt.Errorf("transfer a: %w", err)
	}
	if err := e.tokens.TransferChecked(txn, accts.UserTokenB, pool.TokenBVault, pool.TokenBMint, user, amountB, state.DecimalsB); err != nil {
		return model.Outcome{}, fmt.Errorf("transfer b: %w", err)
	}

	signer, err := e.poolSigner(pool)
	if err != nil {
		return model.Outcome{}, err
	}
	if err := e.tokens.MintTo(txn, pool.LPMint, accts.UserLPToken, signer, lp); err != nil {
		return model.Outcome{}, fmt.Errorf("mint lp: %w", err)
	}

	reserveA, err := checkedAdd(state.ReserveA, amountA)
	if err != nil {
		return model.Outcome{}, err
	}
	reserveB, err := checkedAdd(state.ReserveB, amountB)
	if err != nil {
		return model.Outcome{}, err
	}
	supply, err := checkedAdd(state.LPSupply, lp)
	if err != nil {
		return model.Outcome{}, err
	}

	e.logger.Debug("liquidity added",
		zap.Stringer("pool", state.Address),
		zap.Uint64("amount_a", amountA),
		zap.Uint64("amount_b", amountB),
		zap.Uint64("lp", lp),
	)

	return model.Outcome{
		Address:   state.Address.String(),
		EventName: model.EventLiquidityAdded,
		Data: model.LiquidityAddedData{
			Pool:     state.Address.String(),
			Provider: accts.User.String(),
			AmountA:  amountA,
			AmountB:  amountB,
			LPMinted: lp,
			ReserveA: reserveA,
			ReserveB: reserveB,
			LPSupply: supply,
		},
		PoolMeta: state.Meta(),
	}, nil
}

// loadLiquidityState loads the pool and checks the deposit and redemption accounts.
func (e *Engine) loadLiquidityState(txn *ledger.Txn, accts LiquidityAccounts) (PoolState, error) {
	state, err := e.LoadPool(txn, accts.Pool)
	if err != nil {
		return PoolState{}, err
	}
	pool := state.Pool

	lpMint, _, err := derive.LPMintAddress(e.programID, accts.Pool)
	if err != nil {
		return PoolState{}, fmt.Errorf("derive lp mint: %w", err)
	}
	if !lpMint.Equals(accts.LPMint) {
		return PoolState{}, fmt.Errorf("lp mint %s: %w", accts.LPMint, programerr.ErrConstraintSeeds)
	}
	if !accts.LPMint.Equals(pool.LPMint) {
		return PoolState{}, ErrInvalidPoolState
	}
	if err := checkPoolAccounts(pool, accts.TokenAVault, accts.TokenBVault, accts.TokenAMint, accts.TokenBMint); err != nil {
		return PoolState{}, err
	}
	if err := e.checkUserAccount(txn, accts.UserTokenA, pool.TokenAMint, accts.User); err != nil {
		return PoolState{}, err
	}
	if err := e.checkUserAccount(txn, accts.UserTokenB, pool.TokenBMint, accts.User); err != nil {
		return PoolState{}, err
	}
	if err := e.checkUserAccount(txn, accts.UserLPToken, pool.LPMint, accts.User); err != nil {
		return PoolState{}, err
	}
	return state, nil
}
