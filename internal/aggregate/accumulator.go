package aggregate

import (
	"encoding/json"
	"fmt"
	"math/big"

	"ammGovernance/internal/model"
)

// Accumulator holds aggregate values for a pool window.
type Accumulator struct {
	PoolAddress string
	PoolMeta    model.PoolMeta
	WindowStart uint64
	WindowEnd   uint64
	SwapCount   uint64
	VolumeA     *big.Int
	VolumeB     *big.Int
	FeeA        *big.Int
	FeeB        *big.Int
	ReserveA    *big.Int
	ReserveB    *big.Int
	LastSeq     uint64
	LastTS      uint64
}

func NewAccumulator(record model.TypedEventRecord, windowStart, windowEnd uint64) *Accumulator {
	acc := &Accumulator{
		PoolAddress: record.Address,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		VolumeA:     big.NewInt(0),
		VolumeB:     big.NewInt(0),
		FeeA:        big.NewInt(0),
		FeeB:        big.NewInt(0),
		LastSeq:     record.Sequence,
		LastTS:      uint64(record.Timestamp),
	}
	if record.PoolMeta != nil {
		acc.PoolMeta = *record.PoolMeta
	}
	return acc
}

// AddEvent folds a pool event into the window. Reserves track the latest
// post-event state so the window TVL reflects its last event.
func (a *Accumulator) AddEvent(record model.TypedEventRecord) error {
	if record.Sequence >= a.LastSeq {
		a.LastSeq = record.Sequence
		a.LastTS = uint64(record.Timestamp)
	}
	if record.PoolMeta != nil && a.PoolMeta.TokenAMint == "" {
		a.PoolMeta = *record.PoolMeta
	}

	switch record.EventName {
	case model.EventSwap:
		var swap model.SwapEventData
		if err := json.Unmarshal(record.Decoded, &swap); err != nil {
			return fmt.Errorf("decode swap: %w", err)
		}
		return a.applySwap(swap)
	case model.EventLiquidityAdded:
		var added model.LiquidityAddedData
		if err := json.Unmarshal(record.Decoded, &added); err != nil {
			return fmt.Errorf("decode liquidity added: %w", err)
		}
		a.setReserves(added.ReserveA, added.ReserveB)
		return nil
	case model.EventLiquidityRemoved:
		var removed model.LiquidityRemovedData
		if err := json.Unmarshal(record.Decoded, &removed); err != nil {
			return fmt.Errorf("decode liquidity removed: %w", err)
		}
		a.setReserves(removed.ReserveA, removed.ReserveB)
		return nil
	default:
		return nil
	}
}

func (a *Accumulator) applySwap(swap model.SwapEventData) error {
	if swap.AmountInEff > swap.AmountIn {
		return fmt.Errorf("effective input %d exceeds input %d", swap.AmountInEff, swap.AmountIn)
	}
	in := new(big.Int).SetUint64(swap.AmountIn)
	out := new(big.Int).SetUint64(swap.AmountOut)
	fee := new(big.Int).SetUint64(swap.Fee())

	if swap.AToB {
		a.VolumeA.Add(a.VolumeA, in)
		a.VolumeB.Add(a.VolumeB, out)
		a.FeeA.Add(a.FeeA, fee)
	} else {
		a.VolumeB.Add(a.VolumeB, in)
		a.VolumeA.Add(a.VolumeA, out)
		a.FeeB.Add(a.FeeB, fee)
	}
	a.setReserves(swap.ReserveA, swap.ReserveB)
	a.SwapCount++
	return nil
}

func (a *Accumulator) setReserves(reserveA, reserveB uint64) {
	a.ReserveA = new(big.Int).SetUint64(reserveA)
	a.ReserveB = new(big.Int).SetUint64(reserveB)
}
