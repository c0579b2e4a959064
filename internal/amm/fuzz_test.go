package amm

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

// FuzzSwapProduct checks that reserve_a * reserve_b never decreases across a
// swap when the fee is positive.
func FuzzSwapProduct(f *testing.F) {
	seeds := []struct {
		amountIn, reserveIn, reserveOut uint64
		feeRate                         uint16
	}{
		{100, 1000, 2000, 30},
		{1, 1_000_000_000, 1_000_000_000, 1},
		{1_000_000, 1_000_000_000, 1_000_000_000, 30},
		{9_999_999_999_999_999, 1_000_000_000, 1_000_000_000, 25},
		{500_000, 1, 1<<63 - 1, 10000},
	}
	for _, seed := range seeds {
		f.Add(seed.amountIn, seed.reserveIn, seed.reserveOut, seed.feeRate)
	}

	f.Fuzz(func(t *testing.T, amountIn, reserveIn, reserveOut uint64, feeRate uint16) {
		if amountIn == 0 || reserveIn == 0 || reserveOut == 0 {
			return
		}
		feeRate = feeRate%MaxFeeRate + 1

		quote, err := QuoteSwap(amountIn, reserveIn, reserveOut, feeRate)
		require.NoError(t, err)
		require.Less(t, quote.AmountOut, reserveOut)
		require.LessOrEqual(t, quote.AmountInEff, amountIn)

		newIn, err := checkedAdd(reserveIn, amountIn)
		if err != nil {
			return
		}
		newOut := reserveOut - quote.AmountOut

		kBefore := new(uint256.Int).Mul(uint256.NewInt(reserveIn), uint256.NewInt(reserveOut))
		kAfter := new(uint256.Int).Mul(uint256.NewInt(newIn), uint256.NewInt(newOut))
		require.False(t, kAfter.Lt(kBefore), "k decreased: %s -> %s", kBefore, kAfter)
	})
}

// FuzzDepositWithdraw checks that redeeming freshly minted LP tokens never
// returns more than was deposited.
func FuzzDepositWithdraw(f *testing.F) {
	f.Add(uint64(100), uint64(400), uint64(1000), uint64(2000), uint64(1414))
	f.Add(uint64(1), uint64(1), uint64(3), uint64(7), uint64(5))

	f.Fuzz(func(t *testing.T, amountA, amountB, reserveA, reserveB, supply uint64) {
		if amountA == 0 || amountB == 0 || reserveA == 0 || reserveB == 0 || supply == 0 {
			return
		}
		lp, err := QuoteDeposit(amountA, amountB, reserveA, reserveB, supply)
		if err != nil || lp == 0 {
			return
		}
		newA, errA := checkedAdd(reserveA, amountA)
		newB, errB := checkedAdd(reserveB, amountB)
		newSupply, errS := checkedAdd(supply, lp)
		if errA != nil || errB != nil || errS != nil {
			return
		}

		outA, outB, err := QuoteWithdraw(lp, newA, newB, newSupply)
		require.NoError(t, err)
		require.LessOrEqual(t, outA, amountA)
		require.LessOrEqual(t, outB, amountB)
	})
}
