package amm

import (
	"fmt"

	"go.uber.org/zap"

	"ammGovernance/internal/derive"
	"ammGovernance/internal/ledger"
	"ammGovernance/internal/model"
)

// RemoveLiquidity burns LP tokens and returns the proportional reserves.
func (e *Engine) RemoveLiquidity(txn *ledger.Txn, accts LiquidityAccounts, lpTokens, minAmountA, minAmountB uint64) (model.Outcome, error) {
	state, err := e.loadLiquidityState(txn, accts)
	if err != nil {
		return model.Outcome{}, err
	}

	if lpTokens == 0 {
		return model.Outcome{}, ErrInvalidAmount
	}
	if state.LPSupply == 0 {
		return model.Outcome{}, ErrInsufficientLiquidity
	}
	if lpTokens > state.LPSupply {
		return model.Outcome{}, ErrInvalidAmount
	}

	amountA, amountB, err := QuoteWithdraw(lpTokens, state.ReserveA, state.ReserveB, state.LPSupply)
	if err != nil {
		return model.Outcome{}, err
	}
	if amountA < minAmountA || amountB < minAmountB {
		return model.Outcome{}, ErrSlippageExceeded
	}
	if amountA == 0 || amountB == 0 {
		return model.Outcome{}, ErrInvalidAmount
	}

	pool := state.Pool
	if err := e.tokens.Burn(txn, accts.UserLPToken, pool.LPMint, derive.UserSigner(accts.User), lpTokens); err != nil {
		return model.Outcome{}, fmt.Errorf("burn lp: %w", err)
	}

	signer, err := e.poolSigner(pool)
	if err != nil {
		return model.Outcome{}, err
	}
	if err := e.tokens.TransferChecked(txn, pool.TokenAVault, accts.UserTokenA, pool.TokenAMint, signer, amountA, state.DecimalsA); err != nil {
		return model.Outcome{}, fmt.Errorf("transfer a: %w", err)
	}
	if err := e.tokens.TransferChecked(txn, pool.TokenBVault, accts.UserTokenB, pool.TokenBMint, signer, amountB, state.DecimalsB); err != nil {
		return model.Outcome{}, fmt.Errorf("transfer b: %w", err)
	}

	reserveA, err := checkedSub(state.ReserveA, amountA)
	if err != nil {
		return model.Outcome{}, err
	}
	reserveB, err := checkedSub(state.ReserveB, amountB)
	if err != nil {
		return model.Outcome{}, err
	}
	supply, err := checkedSub(state.LPSupply, lpTokens)
	if err != nil {
		return model.Outcome{}, err
	}

	e.logger.Debug("liquidity removed",
		zap.Stringer("pool", state.Address),
		zap.Uint64("lp", lpTokens),
		zap.Uint64("amount_a", amountA),
		zap.Uint64("amount_b", amountB),
	)

	return model.Outcome{
		Address:   state.Address.String(),
		EventName: model.EventLiquidityRemoved,
		Data: model.LiquidityRemovedData{
			Pool:     state.Address.String(),
			Provider: accts.User.String(),
			LPBurned: lpTokens,
			AmountA:  amountA,
			AmountB:  amountB,
			ReserveA: reserveA,
			ReserveB: reserveB,
			LPSupply: supply,
		},
		PoolMeta: state.Meta(),
	}, nil
}
