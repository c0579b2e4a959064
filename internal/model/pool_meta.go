package model

// PoolMeta captures immutable pool metadata carried on pool events.
type PoolMeta struct {
	TokenAMint string `json:"token_a_mint"`
	TokenBMint string `json:"token_b_mint"`
	LPMint     string `json:"lp_mint"`
	FeeRate    uint16 `json:"fee_rate"`
	DecimalsA  uint8  `json:"decimals_a"`
	DecimalsB  uint8  `json:"decimals_b"`
}
