package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ammGovernance/internal/amm"
)

type swapQuote struct {
	AmountIn    uint64 `json:"amount_in,string"`
	AmountInEff uint64 `json:"amount_in_eff,string"`
	Fee         uint64 `json:"fee,string"`
	AmountOut   uint64 `json:"amount_out,string"`
}

type depositQuote struct {
	LPMinted uint64 `json:"lp_minted,string"`
}

type withdrawQuote struct {
	AmountA uint64 `json:"amount_a,string"`
	AmountB uint64 `json:"amount_b,string"`
}

func runQuote(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	kind, _ := flags.GetString("kind")
	reserveA, _ := flags.GetUint64("reserve-a")
	reserveB, _ := flags.GetUint64("reserve-b")
	supply, _ := flags.GetUint64("supply")

	var result interface{}
	switch kind {
	case "swap":
		feeRate, _ := flags.GetUint16("fee-rate")
		amountIn, _ := flags.GetUint64("amount-in")
		aToB, _ := flags.GetBool("a-to-b")
		reserveIn, reserveOut := reserveA, reserveB
		if !aToB {
			reserveIn, reserveOut = reserveB, reserveA
		}
		q, err := amm.QuoteSwap(amountIn, reserveIn, reserveOut, feeRate)
		if err != nil {
			return err
		}
		result = swapQuote{AmountIn: amountIn, AmountInEff: q.AmountInEff, Fee: q.Fee(amountIn), AmountOut: q.AmountOut}
	case "deposit":
		amountA, _ := flags.GetUint64("amount-a")
		amountB, _ := flags.GetUint64("amount-b")
		lp, err := amm.QuoteDeposit(amountA, amountB, reserveA, reserveB, supply)
		if err != nil {
			return err
		}
		result = depositQuote{LPMinted: lp}
	case "withdraw":
		lp, _ := flags.GetUint64("lp")
		if lp > supply {
			return amm.ErrInvalidAmount
		}
		a, b, err := amm.QuoteWithdraw(lp, reserveA, reserveB, supply)
		if err != nil {
			return err
		}
		result = withdrawQuote{AmountA: a, AmountB: b}
	default:
		return fmt.Errorf("unknown quote kind: %s", kind)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
