package governance

import "ammGovernance/internal/programerr"

// Proposal engine errors. Codes follow declaration order from 6000.
var (
	ErrInvalidUtf8           = programerr.New(6000, "InvalidUtf8", "The provided title is not valid UTF-8.")
	ErrVotingLimitReached    = programerr.New(6001, "VotingLimitReached", "Voting limit has been reached.")
	ErrAlreadyVoted          = programerr.New(6002, "AlreadyVoted", "You have already voted.")
	ErrVotingNotStarted      = programerr.New(6003, "VotingNotStarted", "Voting hasn't started yet.")
	ErrVotingExpired         = programerr.New(6004, "VotingExpired", "Voting duration has expired.")
	ErrVotingNotFinished     = programerr.New(6005, "VotingNotFinished", "Voting is not yet finished.")
	ErrInvalidProposalStatus = programerr.New(6006, "InvalidProposalStatus", "Invalid proposal status for this operation.")
	ErrVotingCountOverflow   = programerr.New(6007, "VotingCountOverflow", "Voting count overflow occurred.")
	ErrUnauthorizedCreator   = programerr.New(6008, "UnauthorizedCreator", "Unauthorized action by the creator.")
	ErrInvalidVotesNeeded    = programerr.New(6009, "InvalidVotesNeeded", "Invalid votes needed parameter")
	ErrInvalidVotingPeriod   = programerr.New(6010, "InvalidVotingPeriod", "Invalid voting period")
	ErrVotingPeriodTooLong   = programerr.New(6011, "VotingPeriodTooLong", "Voting period too long")
)

// Errors lists every proposal engine error in code order.
var Errors = []*programerr.Error{
	ErrInvalidUtf8,
	ErrVotingLimitReached,
	ErrAlreadyVoted,
	ErrVotingNotStarted,
	ErrVotingExpired,
	ErrVotingNotFinished,
	ErrInvalidProposalStatus,
	ErrVotingCountOverflow,
	ErrUnauthorizedCreator,
	ErrInvalidVotesNeeded,
	ErrInvalidVotingPeriod,
	ErrVotingPeriodTooLong,
}
