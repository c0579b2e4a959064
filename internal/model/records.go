package model

// PoolRecord is a pool snapshot for storage.
type PoolRecord struct {
	Address      string `json:"address"`
	TokenAMint   string `json:"token_a_mint"`
	TokenBMint   string `json:"token_b_mint"`
	LPMint       string `json:"lp_mint"`
	FeeRate      uint16 `json:"fee_rate"`
	ReserveA     uint64 `json:"reserve_a"`
	ReserveB     uint64 `json:"reserve_b"`
	LPSupply     uint64 `json:"lp_supply"`
	LastSequence uint64 `json:"last_sequence"`
	UpdatedAt    int64  `json:"updated_at"`
}

// ProposalRecord is a proposal snapshot for storage.
type ProposalRecord struct {
	Address           string         `json:"address"`
	ID                uint64         `json:"id"`
	Creator           string         `json:"creator"`
	Title             string         `json:"title"`
	Status            ProposalStatus `json:"status"`
	VotesNeededToPass uint64         `json:"votes_needed_to_pass"`
	VotingCount       uint64         `json:"voting_count"`
	VotingStart       int64          `json:"voting_start"`
	VotingPeriod      int64          `json:"voting_period"`
	LastSequence      uint64         `json:"last_sequence"`
	UpdatedAt         int64          `json:"updated_at"`
}
