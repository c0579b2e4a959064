package model

// Event names emitted by the runtime.
const (
	EventPoolInitialized  = "PoolInitialized"
	EventLiquidityAdded   = "LiquidityAdded"
	EventLiquidityRemoved = "LiquidityRemoved"
	EventSwap             = "Swap"
	EventProposalCreated  = "ProposalCreated"
	EventVotingStarted    = "VotingStarted"
	EventVoteCast         = "VoteCast"
	EventVotingFinalized  = "VotingFinalized"

	EventMintInitialized = "MintInitialized"
	EventAccountCreated  = "TokenAccountCreated"
	EventTokensMinted    = "TokensMinted"
)

// PoolInitializedData is the payload of a pool creation.
type PoolInitializedData struct {
	Pool        string `json:"pool"`
	TokenAMint  string `json:"token_a_mint"`
	TokenBMint  string `json:"token_b_mint"`
	TokenAVault string `json:"token_a_vault"`
	TokenBVault string `json:"token_b_vault"`
	LPMint      string `json:"lp_mint"`
	FeeRate     uint16 `json:"fee_rate"`
}

// LiquidityAddedData is the payload of a deposit. Reserves are post-deposit.
type LiquidityAddedData struct {
	Pool     string `json:"pool"`
	Provider string `json:"provider"`
	AmountA  uint64 `json:"amount_a,string"`
	AmountB  uint64 `json:"amount_b,string"`
	LPMinted uint64 `json:"lp_minted,string"`
	ReserveA uint64 `json:"reserve_a,string"`
	ReserveB uint64 `json:"reserve_b,string"`
	LPSupply uint64 `json:"lp_supply,string"`
}

// LiquidityRemovedData is the payload of a redemption. Reserves are post-redemption.
type LiquidityRemovedData struct {
	Pool     string `json:"pool"`
	Provider string `json:"provider"`
	LPBurned uint64 `json:"lp_burned,string"`
	AmountA  uint64 `json:"amount_a,string"`
	AmountB  uint64 `json:"amount_b,string"`
	ReserveA uint64 `json:"reserve_a,string"`
	ReserveB uint64 `json:"reserve_b,string"`
	LPSupply uint64 `json:"lp_supply,string"`
}

// SwapEventData is the payload of a swap. Reserves are post-swap.
type SwapEventData struct {
	Pool        string `json:"pool"`
	Trader      string `json:"trader"`
	AToB        bool   `json:"a_to_b"`
	AmountIn    uint64 `json:"amount_in,string"`
	AmountInEff uint64 `json:"amount_in_eff,string"`
	AmountOut   uint64 `json:"amount_out,string"`
	ReserveA    uint64 `json:"reserve_a,string"`
	ReserveB    uint64 `json:"reserve_b,string"`
}

// Fee is the part of the input retained by the pool.
func (s SwapEventData) Fee() uint64 {
	return s.AmountIn - s.AmountInEff
}

// ProposalCreatedData is the payload of a new proposal.
type ProposalCreatedData struct {
	Proposal          string `json:"proposal"`
	Creator           string `json:"creator"`
	ID                uint64 `json:"id"`
	Title             string `json:"title"`
	VotesNeededToPass uint64 `json:"votes_needed_to_pass"`
	VotingPeriod      int64  `json:"voting_period"`
}

// VotingStartedData is the payload of a Draft to Voting transition.
type VotingStartedData struct {
	Proposal    string `json:"proposal"`
	VotingStart int64  `json:"voting_start"`
	VotingEnd   int64  `json:"voting_end"`
}

// VoteCastData is the payload of an accepted vote.
type VoteCastData struct {
	Proposal    string `json:"proposal"`
	Voter       string `json:"voter"`
	VoteRecord  string `json:"vote_record"`
	VotingCount uint64 `json:"voting_count"`
}

// VotingFinalizedData is the payload of a terminal transition.
type VotingFinalizedData struct {
	Proposal          string         `json:"proposal"`
	Status            ProposalStatus `json:"status"`
	VotingCount       uint64         `json:"voting_count"`
	VotesNeededToPass uint64         `json:"votes_needed_to_pass"`
}

// MintInitializedData is the payload of a host mint creation.
type MintInitializedData struct {
	Mint      string `json:"mint"`
	Authority string `json:"authority"`
	Decimals  uint8  `json:"decimals"`
}

// AccountCreatedData is the payload of a host token account creation.
type AccountCreatedData struct {
	Account string `json:"account"`
	Mint    string `json:"mint"`
	Owner   string `json:"owner"`
}

// TokensMintedData is the payload of a host mint_to.
type TokensMintedData struct {
	Mint    string `json:"mint"`
	Account string `json:"account"`
	Amount  uint64 `json:"amount,string"`
	Supply  uint64 `json:"supply,string"`
}
