package amm

import (
	"github.com/holiman/uint256"
)

const (
	// MaxFeeRate is 100% in basis points.
	MaxFeeRate = 10000
	// LPDecimals is the decimals of every LP mint.
	LPDecimals = 6
)

// SwapQuote is the outcome of a constant-product swap.
type SwapQuote struct {
	AmountInEff uint64
	AmountOut   uint64
}

// Fee is the input retained by the pool.
func (q SwapQuote) Fee(amountIn uint64) uint64 {
	return amountIn - q.AmountInEff
}

// QuoteSwap prices amountIn against the reserves after taking the fee.
func QuoteSwap(amountIn, reserveIn, reserveOut uint64, feeRate uint16) (SwapQuote, error) {
	if feeRate > MaxFeeRate {
		return SwapQuote{}, ErrInvalidFeeRate
	}
	eff, err := mulDiv(amountIn, MaxFeeRate-uint64(feeRate), MaxFeeRate)
	if err != nil {
		return SwapQuote{}, err
	}

	den, overflow := new(uint256.Int).AddOverflow(uint256.NewInt(reserveIn), uint256.NewInt(eff))
	if overflow {
		return SwapQuote{}, ErrMathOverflow
	}
	num, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(eff), uint256.NewInt(reserveOut))
	if overflow {
		return SwapQuote{}, ErrMathOverflow
	}
	out, err := quo(num, den)
	if err != nil {
		return SwapQuote{}, err
	}
	return SwapQuote{AmountInEff: eff, AmountOut: out}, nil
}

// QuoteDeposit returns the LP tokens minted for a deposit. An empty pool
// mints the integer square root of the product.
func QuoteDeposit(amountA, amountB, reserveA, reserveB, supply uint64) (uint64, error) {
	if reserveA == 0 && reserveB == 0 {
		product := new(uint256.Int).Mul(uint256.NewInt(amountA), uint256.NewInt(amountB))
		root := new(uint256.Int).Sqrt(product)
		return toUint64(root)
	}

	fromA, err := mulDiv(amountA, supply, reserveA)
	if err != nil {
		return 0, err
	}
	fromB, err := mulDiv(amountB, supply, reserveB)
	if err != nil {
		return 0, err
	}
	if fromA < fromB {
		return fromA, nil
	}
	return fromB, nil
}

// QuoteWithdraw returns the reserves redeemed by lp tokens.
func QuoteWithdraw(lp, reserveA, reserveB, supply uint64) (uint64, uint64, error) {
	amountA, err := mulDiv(lp, reserveA, supply)
	if err != nil {
		return 0, 0, err
	}
	amountB, err := mulDiv(lp, reserveB, supply)
	if err != nil {
		return 0, 0, err
	}
	return amountA, amountB, nil
}

// mulDiv computes a*b/c with a 256-bit intermediate.
func mulDiv(a, b, c uint64) (uint64, error) {
	num, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(a), uint256.NewInt(b))
	if overflow {
		return 0, ErrMathOverflow
	}
	return quo(num, uint256.NewInt(c))
}

func quo(num, den *uint256.Int) (uint64, error) {
	if den.IsZero() {
		return 0, ErrMathOverflow
	}
	return toUint64(new(uint256.Int).Div(num, den))
}

func toUint64(v *uint256.Int) (uint64, error) {
	if !v.IsUint64() {
		return 0, ErrMathOverflow
	}
	return v.Uint64(), nil
}

func checkedAdd(a, b uint64) (uint64, error) {
	sum, overflow := new(uint256.Int).AddOverflow(uint256.NewInt(a), uint256.NewInt(b))
	if overflow {
		return 0, ErrMathOverflow
	}
	return toUint64(sum)
}

func checkedSub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrMathOverflow
	}
	return a - b, nil
}
