package amm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQuoteSwapReferenceVector(t *testing.T) {
	quote, err := QuoteSwap(100, 1000, 2000, 30)
	require.NoError(t, err)
	require.Equal(t, uint64(99), quote.AmountInEff)
	require.Equal(t, uint64(180), quote.AmountOut)
	require.Equal(t, uint64(1), quote.Fee(100))
}

func TestQuoteSwapFeeBounds(t *testing.T) {
	quote, err := QuoteSwap(100, 1000, 1000, 10000)
	require.NoError(t, err)
	require.Zero(t, quote.AmountInEff)
	require.Zero(t, quote.AmountOut)

	_, err = QuoteSwap(100, 1000, 1000, 10001)
	require.ErrorIs(t, err, ErrInvalidFeeRate)

	quote, err = QuoteSwap(math.MaxUint64, math.MaxUint64, math.MaxUint64, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64/2), quote.AmountOut)
}

func TestQuoteSwapEmptyPoolDivides(t *testing.T) {
	_, err := QuoteSwap(0, 0, 1000, 30)
	require.ErrorIs(t, err, ErrMathOverflow)
}

func TestQuoteDepositFirstDeposit(t *testing.T) {
	lp, err := QuoteDeposit(100, 400, 0, 0, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(200), lp)

	lp, err = QuoteDeposit(2, 3, 0, 0, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(2), lp)

	lp, err = QuoteDeposit(math.MaxUint64, math.MaxUint64, 0, 0, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64), lp)
}

func TestQuoteDepositTakesSmallerSide(t *testing.T) {
	lp, err := QuoteDeposit(100, 200, 1000, 2000, 1000)
	require.NoError(t, err)
	require.Equal(t, uint64(100), lp)

	lp, err = QuoteDeposit(100, 500, 1000, 2000, 1000)
	require.NoError(t, err)
	require.Equal(t, uint64(100), lp)

	lp, err = QuoteDeposit(300, 200, 1000, 2000, 1000)
	require.NoError(t, err)
	require.Equal(t, uint64(100), lp)
}

func TestQuoteDepositOverflow(t *testing.T) {
	_, err := QuoteDeposit(math.MaxUint64, math.MaxUint64, 1, 1, math.MaxUint64)
	require.ErrorIs(t, err, ErrMathOverflow)

	_, err = QuoteDeposit(1, 1, 0, 10, 10)
	require.ErrorIs(t, err, ErrMathOverflow)
}

func TestQuoteWithdraw(t *testing.T) {
	a, b, err := QuoteWithdraw(50, 1000, 2000, 200)
	require.NoError(t, err)
	require.Equal(t, uint64(250), a)
	require.Equal(t, uint64(500), b)

	_, _, err = QuoteWithdraw(1, 1, 1, 0)
	require.ErrorIs(t, err, ErrMathOverflow)
}

func TestErrorCodesAreSequential(t *testing.T) {
	for i, e := range Errors {
		require.Equal(t, uint32(6000+i), e.Code, e.Name)
	}
}
