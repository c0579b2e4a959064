package amm

import (
	"fmt"

	"go.uber.org/zap"

	"ammGovernance/internal/derive"
	"ammGovernance/internal/ledger"
	"ammGovernance/internal/model"
)

// Swap trades amountIn of one pool token for the other.
func (e *Engine) Swap(txn *ledger.Txn, accts SwapAccounts, amountIn, minAmountOut uint64, aToB bool) (model.Outcome, error) {
	state, err := e.LoadPool(txn, accts.Pool)
	if err != nil {
		return model.Outcome{}, err
	}
	pool := state.Pool
	if err := checkPoolAccounts(pool, accts.TokenAVault, accts.TokenBVault, accts.TokenAMint, accts.TokenBMint); err != nil {
		return model.Outcome{}, err
	}
	if err := e.checkUserAccount(txn, accts.UserTokenA, pool.TokenAMint, accts.User); err != nil {
		return model.Outcome{}, err
	}
	if err := e.checkUserAccount(txn, accts.UserTokenB, pool.TokenBMint, accts.User); err != nil {
		return model.Outcome{}, err
	}

	if amountIn == 0 {
		return model.Outcome{}, ErrInvalidAmount
	}
	if state.ReserveA == 0 || state.ReserveB == 0 {
		return model.Outcome{}, ErrInsufficientLiquidity
	}

	reserveIn, reserveOut := state.ReserveA, state.ReserveB
	if !aToB {
		reserveIn, reserveOut = state.ReserveB, state.ReserveA
	}
	quote, err := QuoteSwap(amountIn, reserveIn, reserveOut, pool.FeeRate)
	if err != nil {
		return model.Outcome{}, err
	}
	if quote.AmountOut < minAmountOut {
		return model.Outcome{}, ErrSlippageExceeded
	}
	if quote.AmountOut == 0 {
		return model.Outcome{}, ErrInvalidAmount
	}

	signer, err := e.poolSigner(pool)
	if err != nil {
		return model.Outcome{}, err
	}
	user := derive.UserSigner(accts.User)
	if aToB {
		if err := e.tokens.TransferChecked(txn, accts.UserTokenA, pool.TokenAVault, pool.TokenAMint, user, amountIn, state.DecimalsA); err != nil {
			return model.Outcome{}, fmt.Errorf("transfer in: %w", err)
		}
		if err := e.tokens.TransferChecked(txn, pool.TokenBVault, accts.UserTokenB, pool.TokenBMint, signer, quote.AmountOut, state.DecimalsB); err != nil {
			return model.Outcome{}, fmt.Errorf("transfer out: %w", err)
		}
	} else {
		if err := e.tokens.TransferChecked(txn, accts.UserTokenB, pool.TokenBVault, pool.TokenBMint, user, amountIn, state.DecimalsB); err != nil {
			return model.Outcome{}, fmt.Errorf("transfer in: %w", err)
		}
		if err := e.tokens.TransferChecked(txn, pool.TokenAVault, accts.UserTokenA, pool.TokenAMint, signer, quote.AmountOut, state.DecimalsA); err != nil {
			return model.Outcome{}, fmt.Errorf("transfer out: %w", err)
		}
	}

	newIn, err := checkedAdd(reserveIn, amountIn)
	if err != nil {
		return model.Outcome{}, err
	}
	newOut, err := checkedSub(reserveOut, quote.AmountOut)
	if err != nil {
		return model.Outcome{}, err
	}
	reserveA, reserveB := newIn, newOut
	if !aToB {
		reserveA, reserveB = newOut, newIn
	}

	e.logger.Debug("swap",
		zap.Stringer("pool", state.Address),
		zap.Bool("a_to_b", aToB),
		zap.Uint64("amount_in", amountIn),
		zap.Uint64("amount_out", quote.AmountOut),
	)

	return model.Outcome{
		Address:   state.Address.String(),
		EventName: model.EventSwap,
		Data: model.SwapEventData{
			Pool:        state.Address.String(),
			Trader:      accts.User.String(),
			AToB:        aToB,
			AmountIn:    amountIn,
			AmountInEff: quote.AmountInEff,
			AmountOut:   quote.AmountOut,
			ReserveA:    reserveA,
			ReserveB:    reserveB,
		},
		PoolMeta: state.Meta(),
	}, nil
}
