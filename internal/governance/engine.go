// Package governance implements the proposal voting program.
package governance

import (
	"fmt"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"ammGovernance/internal/derive"
	"ammGovernance/internal/ledger"
	"ammGovernance/internal/model"
	"ammGovernance/internal/programerr"
)

// MaxVotingPeriod is seven days in seconds.
const MaxVotingPeriod int64 = 604800

// DefaultProgramID is the address the governance program is deployed at.
var DefaultProgramID = solana.MustPublicKeyFromBase58("EcbveCd95F5SydRXvUcMLMrhDWSNWCRkpHtGh8M62ETb")

// CreateProposalArgs are the arguments of create_proposal.
type CreateProposalArgs struct {
	ProposalID        uint64
	Title             [32]byte
	Description       [256]byte
	VotesNeededToPass uint64
	VotingPeriod      int64
}

// CreateProposalAccounts are the accounts of create_proposal.
type CreateProposalAccounts struct {
	Creator  solana.PublicKey `account:"creator,signer"`
	Proposal solana.PublicKey `account:"proposal"`
}

// CreatorAccounts are the accounts of start_voting and finalize_voting.
type CreatorAccounts struct {
	Creator  solana.PublicKey `account:"creator,signer"`
	Proposal solana.PublicKey `account:"proposal"`
}

// VoteAccounts are the accounts of vote.
type VoteAccounts struct {
	Creator    solana.PublicKey `account:"creator"`
	Proposal   solana.PublicKey `account:"proposal"`
	Voter      solana.PublicKey `account:"voter,signer"`
	VoteRecord solana.PublicKey `account:"voter_record"`
}

// Engine executes proposal instructions against a ledger transaction.
type Engine struct {
	programID solana.PublicKey
	logger    *zap.Logger
}

// NewEngine builds a proposal engine.
func NewEngine(programID solana.PublicKey, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{programID: programID, logger: logger}
}

// ProgramID returns the governance program address.
func (e *Engine) ProgramID() solana.PublicKey { return e.programID }

// CreateProposal allocates a Draft proposal.
func (e *Engine) CreateProposal(txn *ledger.Txn, accts CreateProposalAccounts, args CreateProposalArgs) (model.Outcome, error) {
	if args.VotesNeededToPass == 0 {
		return model.Outcome{}, ErrInvalidVotesNeeded
	}
	if args.VotingPeriod <= 0 {
		return model.Outcome{}, ErrInvalidVotingPeriod
	}
	if args.VotingPeriod > MaxVotingPeriod {
		return model.Outcome{}, ErrVotingPeriodTooLong
	}
	if !utf8.Valid(model.TrimPadding(args.Title[:])) {
		return model.Outcome{}, ErrInvalidUtf8
	}

	addr, bump, err := derive.ProposalAddress(e.programID, args.ProposalID, accts.Creator)
	if err != nil {
		return model.Outcome{}, fmt.Errorf("derive proposal: %w", err)
	}
	if !addr.Equals(accts.Proposal) {
		return model.Outcome{}, fmt.Errorf("proposal %s: %w", accts.Proposal, programerr.ErrConstraintSeeds)
	}

	proposal := model.Proposal{
		ID:                args.ProposalID,
		Title:             args.Title,
		Description:       args.Description,
		VotesNeededToPass: args.VotesNeededToPass,
		VotingPeriod:      args.VotingPeriod,
		Creator:           accts.Creator,
		ProposalStatus:    model.ProposalDraft,
		Bump:              bump,
	}
	if err := ledger.Init(txn, addr, e.programID, proposal); err != nil {
		return model.Outcome{}, err
	}

	e.logger.Debug("proposal created",
		zap.Stringer("proposal", addr),
		zap.Uint64("id", args.ProposalID),
		zap.Stringer("creator", accts.Creator),
	)

	return model.Outcome{
		Address:   addr.String(),
		EventName: model.EventProposalCreated,
		Data: model.ProposalCreatedData{
			Proposal:          addr.String(),
			Creator:           accts.Creator.String(),
			ID:                args.ProposalID,
			Title:             proposal.TitleText(),
			VotesNeededToPass: args.VotesNeededToPass,
			VotingPeriod:      args.VotingPeriod,
		},
	}, nil
}

// StartVoting opens the voting window at now.
func (e *Engine) StartVoting(txn *ledger.Txn, accts CreatorAccounts, proposalID uint64, now int64) (model.Outcome, error) {
	proposal, err := e.loadAsCreator(txn, accts, proposalID)
	if err != nil {
		return model.Outcome{}, err
	}
	if proposal.ProposalStatus != model.ProposalDraft {
		return model.Outcome{}, ErrInvalidProposalStatus
	}

	proposal.VotingStart = now
	proposal.ProposalStatus = model.ProposalVoting
	end, err := proposal.VotingEnd()
	if err != nil {
		return model.Outcome{}, err
	}
	if err := ledger.Save(txn, accts.Proposal, e.programID, proposal); err != nil {
		return model.Outcome{}, err
	}

	e.logger.Debug("voting started", zap.Stringer("proposal", accts.Proposal), zap.Int64("start", now))

	return model.Outcome{
		Address:   accts.Proposal.String(),
		EventName: model.EventVotingStarted,
		Data: model.VotingStartedData{
			Proposal:    accts.Proposal.String(),
			VotingStart: now,
			VotingEnd:   end,
		},
	}, nil
}

// Vote records one vote by the signer.
func (e *Engine) Vote(txn *ledger.Txn, accts VoteAccounts, proposalID uint64, now int64) (model.Outcome, error) {
	proposal, err := e.loadProposal(txn, accts.Proposal, proposalID, accts.Creator)
	if err != nil {
		return model.Outcome{}, err
	}

	recordAddr, bump, err := derive.VoteRecordAddress(e.programID, accts.Voter, accts.Proposal)
	if err != nil {
		return model.Outcome{}, fmt.Errorf("derive vote record: %w", err)
	}
	if !recordAddr.Equals(accts.VoteRecord) {
		return model.Outcome{}, fmt.Errorf("vote record %s: %w", accts.VoteRecord, programerr.ErrConstraintSeeds)
	}
	voted, err := txn.Exists(recordAddr)
	if err != nil {
		return model.Outcome{}, err
	}
	if voted {
		return model.Outcome{}, ErrAlreadyVoted
	}

	if proposal.ProposalStatus != model.ProposalVoting {
		return model.Outcome{}, ErrInvalidProposalStatus
	}
	if now < proposal.VotingStart {
		return model.Outcome{}, ErrVotingNotStarted
	}
	end, err := proposal.VotingEnd()
	if err != nil {
		return model.Outcome{}, err
	}
	if now > end {
		return model.Outcome{}, ErrVotingExpired
	}
	if proposal.VotingCount >= proposal.VotesNeededToPass {
		return model.Outcome{}, ErrVotingLimitReached
	}

	count, overflow := math.SafeAdd(proposal.VotingCount, 1)
	if overflow {
		return model.Outcome{}, ErrVotingCountOverflow
	}

	record := model.VoteRecord{
		Voter:    accts.Voter,
		Proposal: accts.Proposal,
		Voted:    true,
		Bump:     bump,
	}
	if err := ledger.Init(txn, recordAddr, e.programID, record); err != nil {
		return model.Outcome{}, err
	}
	proposal.VotingCount = count
	if err := ledger.Save(txn, accts.Proposal, e.programID, proposal); err != nil {
		return model.Outcome{}, err
	}

	e.logger.Debug("vote cast",
		zap.Stringer("proposal", accts.Proposal),
		zap.Stringer("voter", accts.Voter),
		zap.Uint64("count", count),
	)

	return model.Outcome{
		Address:   accts.Proposal.String(),
		EventName: model.EventVoteCast,
		Data: model.VoteCastData{
			Proposal:    accts.Proposal.String(),
			Voter:       accts.Voter.String(),
			VoteRecord:  recordAddr.String(),
			VotingCount: count,
		},
	}, nil
}

// FinalizeVoting closes an elapsed window as Passed or Failed.
func (e *Engine) FinalizeVoting(txn *ledger.Txn, accts CreatorAccounts, proposalID uint64, now int64) (model.Outcome, error) {
	proposal, err := e.loadAsCreator(txn, accts, proposalID)
	if err != nil {
		return model.Outcome{}, err
	}
	if proposal.ProposalStatus != model.ProposalVoting {
		return model.Outcome{}, ErrInvalidProposalStatus
	}
	end, err := proposal.VotingEnd()
	if err != nil {
		return model.Outcome{}, err
	}
	if now < end {
		return model.Outcome{}, ErrVotingNotFinished
	}

	if proposal.VotingCount >= proposal.VotesNeededToPass {
		proposal.ProposalStatus = model.ProposalPassed
	} else {
		proposal.ProposalStatus = model.ProposalFailed
	}
	if err := ledger.Save(txn, accts.Proposal, e.programID, proposal); err != nil {
		return model.Outcome{}, err
	}

	e.logger.Debug("voting finalized",
		zap.Stringer("proposal", accts.Proposal),
		zap.Stringer("status", proposal.ProposalStatus),
	)

	return model.Outcome{
		Address:   accts.Proposal.String(),
		EventName: model.EventVotingFinalized,
		Data: model.VotingFinalizedData{
			Proposal:          accts.Proposal.String(),
			Status:            proposal.ProposalStatus,
			VotingCount:       proposal.VotingCount,
			VotesNeededToPass: proposal.VotesNeededToPass,
		},
	}, nil
}

// LoadProposal reads a proposal account.
func (e *Engine) LoadProposal(txn *ledger.Txn, key solana.PublicKey) (model.Proposal, error) {
	var proposal model.Proposal
	if err := ledger.Load(txn, key, e.programID, &proposal); err != nil {
		return model.Proposal{}, err
	}
	return proposal, nil
}

func (e *Engine) loadAsCreator(txn *ledger.Txn, accts CreatorAccounts, proposalID uint64) (model.Proposal, error) {
	proposal, err := e.LoadProposal(txn, accts.Proposal)
	if err != nil {
		return model.Proposal{}, err
	}
	if !proposal.Creator.Equals(accts.Creator) {
		return model.Proposal{}, ErrUnauthorizedCreator
	}
	if err := derive.Verify(e.programID, derive.ProposalSeeds(proposalID, accts.Creator), proposal.Bump, accts.Proposal); err != nil {
		return model.Proposal{}, fmt.Errorf("proposal %s: %w", accts.Proposal, programerr.ErrConstraintSeeds)
	}
	return proposal, nil
}

func (e *Engine) loadProposal(txn *ledger.Txn, key solana.PublicKey, proposalID uint64, creator solana.PublicKey) (model.Proposal, error) {
	proposal, err := e.LoadProposal(txn, key)
	if err != nil {
		return model.Proposal{}, err
	}
	if err := derive.Verify(e.programID, derive.ProposalSeeds(proposalID, creator), proposal.Bump, key); err != nil {
		return model.Proposal{}, fmt.Errorf("proposal %s: %w", key, programerr.ErrConstraintSeeds)
	}
	return proposal, nil
}
