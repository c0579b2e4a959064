package model

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gagliardetto/solana-go"

	"ammGovernance/internal/programerr"
)

// AccountDiscriminator returns the 8-byte type tag stored in front of an account payload.
func AccountDiscriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("account:" + name))
	var disc [8]byte
	copy(disc[:], sum[:8])
	return disc
}

var (
	PoolDiscriminator         = AccountDiscriminator("Pool")
	ProposalDiscriminator     = AccountDiscriminator("Proposal")
	VoteRecordDiscriminator   = AccountDiscriminator("VoteRecord")
	MintDiscriminator         = AccountDiscriminator("Mint")
	TokenAccountDiscriminator = AccountDiscriminator("TokenAccount")
)

// Pool is the AMM pool account for one unordered mint pair.
type Pool struct {
	Authority   solana.PublicKey `json:"authority"`
	TokenAMint  solana.PublicKey `json:"token_a_mint"`
	TokenBMint  solana.PublicKey `json:"token_b_mint"`
	TokenAVault solana.PublicKey `json:"token_a_vault"`
	TokenBVault solana.PublicKey `json:"token_b_vault"`
	LPMint      solana.PublicKey `json:"lp_mint"`
	FeeRate     uint16           `json:"fee_rate"`
	Bump        uint8            `json:"bump"`
	LPMintBump  uint8            `json:"lp_mint_bump"`
}

func (Pool) Discriminator() [8]byte { return PoolDiscriminator }

// ProposalStatus is the governance lifecycle state.
type ProposalStatus uint8

const (
	ProposalDraft ProposalStatus = iota
	ProposalVoting
	ProposalPassed
	ProposalFailed
)

var proposalStatusNames = [...]string{"Draft", "Voting", "Passed", "Failed"}

func (s ProposalStatus) String() string {
	if int(s) < len(proposalStatusNames) {
		return proposalStatusNames[s]
	}
	return fmt.Sprintf("ProposalStatus(%d)", uint8(s))
}

// MarshalText encodes the status by name.
func (s ProposalStatus) MarshalText() ([]byte, error) {
	if int(s) >= len(proposalStatusNames) {
		return nil, fmt.Errorf("invalid proposal status: %d", uint8(s))
	}
	return []byte(proposalStatusNames[s]), nil
}

// UnmarshalText decodes a status name.
func (s *ProposalStatus) UnmarshalText(text []byte) error {
	for i, name := range proposalStatusNames {
		if name == string(text) {
			*s = ProposalStatus(i)
			return nil
		}
	}
	return fmt.Errorf("invalid proposal status: %q", string(text))
}

// Terminal reports whether no further transition is possible.
func (s ProposalStatus) Terminal() bool {
	return s == ProposalPassed || s == ProposalFailed
}

// Proposal is a governance proposal account.
type Proposal struct {
	ID                uint64           `json:"id"`
	Title             [32]byte         `json:"-"`
	Description       [256]byte        `json:"-"`
	VotesNeededToPass uint64           `json:"votes_needed_to_pass"`
	VotingStart       int64            `json:"voting_start"`
	VotingPeriod      int64            `json:"voting_period"`
	Creator           solana.PublicKey `json:"creator"`
	ProposalStatus    ProposalStatus   `json:"proposal_status"`
	VotingCount       uint64           `json:"voting_count"`
	Bump              uint8            `json:"bump"`
}

func (Proposal) Discriminator() [8]byte { return ProposalDiscriminator }

// TitleText returns the title without its NUL padding.
func (p Proposal) TitleText() string {
	return string(TrimPadding(p.Title[:]))
}

// DescriptionText returns the description without its NUL padding.
func (p Proposal) DescriptionText() string {
	return string(TrimPadding(p.Description[:]))
}

// VotingEnd is the last second at which a vote is accepted. It fails rather
// than wrap when the window leaves the int64 range.
func (p Proposal) VotingEnd() (int64, error) {
	if (p.VotingPeriod > 0 && p.VotingStart > math.MaxInt64-p.VotingPeriod) ||
		(p.VotingPeriod < 0 && p.VotingStart < math.MinInt64-p.VotingPeriod) {
		return 0, fmt.Errorf("voting end %d%+d: %w", p.VotingStart, p.VotingPeriod, programerr.ErrArithmeticOverflow)
	}
	return p.VotingStart + p.VotingPeriod, nil
}

// TrimPadding drops trailing NUL bytes from a fixed-size text field.
func TrimPadding(b []byte) []byte {
	return bytes.TrimRight(b, "\x00")
}

// PadTitle copies s into a fixed 32-byte field, failing if it does not fit.
func PadTitle(s string) ([32]byte, error) {
	var out [32]byte
	if len(s) > len(out) {
		return out, fmt.Errorf("title is %d bytes, max %d", len(s), len(out))
	}
	copy(out[:], s)
	return out, nil
}

// PadDescription copies s into a fixed 256-byte field.
func PadDescription(s string) ([256]byte, error) {
	var out [256]byte
	if len(s) > len(out) {
		return out, fmt.Errorf("description is %d bytes, max %d", len(s), len(out))
	}
	copy(out[:], s)
	return out, nil
}

// VoteRecord marks that a voter has voted on a proposal.
type VoteRecord struct {
	Voter    solana.PublicKey `json:"voter"`
	Proposal solana.PublicKey `json:"proposal"`
	Voted    bool             `json:"voted"`
	Bump     uint8            `json:"bump"`
}

func (VoteRecord) Discriminator() [8]byte { return VoteRecordDiscriminator }

// Mint is a fungible token mint held by the token ledger.
type Mint struct {
	MintAuthority solana.PublicKey `json:"mint_authority"`
	Supply        uint64           `json:"supply"`
	Decimals      uint8            `json:"decimals"`
}

func (Mint) Discriminator() [8]byte { return MintDiscriminator }

// TokenAccount is a balance of one mint controlled by an owner.
type TokenAccount struct {
	Mint   solana.PublicKey `json:"mint"`
	Owner  solana.PublicKey `json:"owner"`
	Amount uint64           `json:"amount"`
}

func (TokenAccount) Discriminator() [8]byte { return TokenAccountDiscriminator }
