package governance

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"ammGovernance/internal/derive"
)

// NewCreateProposalAccounts fills the derived proposal address.
func NewCreateProposalAccounts(programID, creator solana.PublicKey, proposalID uint64) (CreateProposalAccounts, error) {
	addr, _, err := derive.ProposalAddress(programID, proposalID, creator)
	if err != nil {
		return CreateProposalAccounts{}, fmt.Errorf("derive proposal: %w", err)
	}
	return CreateProposalAccounts{Creator: creator, Proposal: addr}, nil
}

// NewCreatorAccounts fills the accounts of start_voting and finalize_voting.
func NewCreatorAccounts(programID, creator solana.PublicKey, proposalID uint64) (CreatorAccounts, error) {
	accts, err := NewCreateProposalAccounts(programID, creator, proposalID)
	if err != nil {
		return CreatorAccounts{}, err
	}
	return CreatorAccounts(accts), nil
}

// NewVoteAccounts fills the proposal and vote record addresses of vote.
func NewVoteAccounts(programID, creator, voter solana.PublicKey, proposalID uint64) (VoteAccounts, error) {
	proposal, _, err := derive.ProposalAddress(programID, proposalID, creator)
	if err != nil {
		return VoteAccounts{}, fmt.Errorf("derive proposal: %w", err)
	}
	record, _, err := derive.VoteRecordAddress(programID, voter, proposal)
	if err != nil {
		return VoteAccounts{}, fmt.Errorf("derive vote record: %w", err)
	}
	return VoteAccounts{Creator: creator, Proposal: proposal, Voter: voter, VoteRecord: record}, nil
}
