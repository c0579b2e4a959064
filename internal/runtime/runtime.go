package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"ammGovernance/internal/amm"
	"ammGovernance/internal/clock"
	"ammGovernance/internal/governance"
	"ammGovernance/internal/ledger"
	"ammGovernance/internal/model"
	"ammGovernance/internal/programerr"
	"ammGovernance/internal/token"
)

var (
	ammDecoder   = NewAMMDecoder()
	govDecoder   = NewGovernanceDecoder()
	tokenDecoder = NewTokenDecoder()
)

var (
	ErrUnknownProgram  = errors.New("unknown program")
	ErrStaleSequence   = errors.New("stale sequence")
	ErrClockRegression = errors.New("clock moved backwards")
	ErrFutureTimestamp = errors.New("timestamp ahead of host clock")
)

// HostError is a failure of the host (clock, context, storage) rather than a
// rejection of the transaction. The sequence is not consumed, so the same
// record can be executed again once the host recovers.
type HostError struct {
	Err error
}

func (e *HostError) Error() string { return e.Err.Error() }

func (e *HostError) Unwrap() error { return e.Err }

func hostErrorf(format string, args ...interface{}) error {
	return &HostError{Err: fmt.Errorf(format, args...)}
}

// IsHostError reports whether err left the transaction unapplied and
// unconsumed.
func IsHostError(err error) bool {
	var herr *HostError
	return errors.As(err, &herr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Config configures a Runtime.
type Config struct {
	AMMProgramID        solana.PublicKey
	GovernanceProgramID solana.PublicKey
	RequireSignatures   bool

	// TrustRecordTimestamps runs signed records at their own timestamp
	// instead of the host clock. Only for replaying a trusted history; the
	// timestamp must still be monotonic and not ahead of the host clock.
	TrustRecordTimestamps bool
}

// DefaultConfig uses the deployed program addresses and requires signatures.
func DefaultConfig() Config {
	return Config{
		AMMProgramID:        amm.DefaultProgramID,
		GovernanceProgramID: governance.DefaultProgramID,
		RequireSignatures:   true,
	}
}

// Runtime executes transaction records against the ledger one at a time.
type Runtime struct {
	mu     sync.Mutex
	cfg    Config
	store  *ledger.Store
	clock  clock.Clock
	tokens *token.Program
	amm    *amm.Engine
	gov    *governance.Engine
	logger *zap.Logger
}

// New builds a runtime over store.
func New(cfg Config, store *ledger.Store, clk clock.Clock, logger *zap.Logger) *Runtime {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clk == nil {
		clk = clock.System{}
	}
	tokens := token.New()
	return &Runtime{
		cfg:    cfg,
		store:  store,
		clock:  clk,
		tokens: tokens,
		amm:    amm.NewEngine(cfg.AMMProgramID, tokens, logger),
		gov:    governance.NewEngine(cfg.GovernanceProgramID, logger),
		logger: logger,
	}
}

// Store returns the ledger the runtime writes to.
func (r *Runtime) Store() *ledger.Store { return r.store }

// Tokens returns the token program bound to the ledger.
func (r *Runtime) Tokens() *token.Program { return r.tokens }

// AMM returns the pool engine.
func (r *Runtime) AMM() *amm.Engine { return r.amm }

// Governance returns the proposal engine.
func (r *Runtime) Governance() *governance.Engine { return r.gov }

// Execute applies one transaction. On success the account changes, the
// sequence and the clock value are committed together. A rejected
// transaction persists only its sequence; a HostError persists nothing.
func (r *Runtime) Execute(ctx context.Context, tx model.TransactionRecord) (model.TypedEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return model.TypedEvent{}, err
	}
	last, ok, err := r.store.LastSequence()
	if err != nil {
		return model.TypedEvent{}, &HostError{Err: err}
	}
	if ok && tx.Sequence <= last {
		return model.TypedEvent{}, fmt.Errorf("%w: %d <= %d", ErrStaleSequence, tx.Sequence, last)
	}

	event, err := r.execute(ctx, tx)
	if err != nil {
		if IsHostError(err) {
			r.logger.Warn("host failure", zap.Uint64("sequence", tx.Sequence), zap.Error(err))
			return model.TypedEvent{}, err
		}
		if markErr := r.store.MarkSequence(tx.Sequence); markErr != nil {
			return model.TypedEvent{}, hostErrorf("mark sequence %d: %w", tx.Sequence, markErr)
		}
		r.logger.Debug("transaction rejected",
			zap.Uint64("sequence", tx.Sequence),
			zap.String("program", tx.Program),
			zap.Error(err),
		)
		return model.TypedEvent{}, err
	}

	r.logger.Debug("transaction applied",
		zap.Uint64("sequence", tx.Sequence),
		zap.String("instruction", event.Instruction),
		zap.String("event", event.EventName),
		zap.String("address", event.Address),
	)
	return event, nil
}

func (r *Runtime) execute(ctx context.Context, tx model.TransactionRecord) (model.TypedEvent, error) {
	program, err := solana.PublicKeyFromBase58(tx.Program)
	if err != nil {
		return model.TypedEvent{}, fmt.Errorf("program: %w", err)
	}
	signer, err := solana.PublicKeyFromBase58(tx.Signer)
	if err != nil {
		return model.TypedEvent{}, fmt.Errorf("signer: %w", err)
	}
	if r.cfg.RequireSignatures || tx.Signature != "" {
		if err := Verify(tx); err != nil {
			return model.TypedEvent{}, err
		}
	}
	data, err := hexutil.Decode(tx.Data)
	if err != nil {
		return model.TypedEvent{}, fmt.Errorf("data: %w", err)
	}
	accounts, err := ParseAccounts(tx.Accounts)
	if err != nil {
		return model.TypedEvent{}, err
	}

	now, err := r.now(ctx, tx)
	if err != nil {
		return model.TypedEvent{}, err
	}

	dec, err := r.decoderFor(program)
	if err != nil {
		return model.TypedEvent{}, err
	}
	ins, err := dec.Decode(data)
	if err != nil {
		return model.TypedEvent{}, err
	}

	txn := r.store.Begin()
	defer txn.Discard()

	var outcome model.Outcome
	if dec == tokenDecoder {
		outcome, err = r.dispatchToken(txn, ins, accounts, signer)
	} else {
		outcome, err = r.dispatch(txn, ins, accounts, signer, now)
	}
	if err != nil {
		return model.TypedEvent{}, fmt.Errorf("%s: %w", ins.Name, err)
	}
	if err := txn.SetSequence(tx.Sequence); err != nil {
		return model.TypedEvent{}, &HostError{Err: err}
	}
	if err := txn.SetTimestamp(now); err != nil {
		return model.TypedEvent{}, &HostError{Err: err}
	}
	if err := txn.Commit(); err != nil {
		return model.TypedEvent{}, hostErrorf("commit: %w", err)
	}

	return model.TypedEvent{
		Sequence:    tx.Sequence,
		Signature:   tx.Signature,
		Program:     program.String(),
		Instruction: ins.Name,
		Address:     outcome.Address,
		EventName:   outcome.EventName,
		Timestamp:   now,
		Decoded:     outcome.Data,
		PoolMeta:    outcome.PoolMeta,
	}, nil
}

// now picks the clock value a transaction runs at. It never moves backwards
// from the last committed transaction and never runs ahead of the host clock.
func (r *Runtime) now(ctx context.Context, tx model.TransactionRecord) (int64, error) {
	host, err := r.clock.Now(ctx)
	if err != nil {
		return 0, hostErrorf("clock: %w", err)
	}
	last, hasLast, err := r.store.LastTimestamp()
	if err != nil {
		return 0, &HostError{Err: err}
	}

	if !r.cfg.TrustRecordTimestamps || tx.Timestamp == 0 {
		if hasLast && host < last {
			return 0, hostErrorf("%w: host clock %d < %d", ErrClockRegression, host, last)
		}
		return host, nil
	}

	if tx.Timestamp > host {
		return 0, fmt.Errorf("%w: %d > %d", ErrFutureTimestamp, tx.Timestamp, host)
	}
	if hasLast && tx.Timestamp < last {
		return 0, fmt.Errorf("%w: %d < %d", ErrClockRegression, tx.Timestamp, last)
	}
	return tx.Timestamp, nil
}

func (r *Runtime) decoderFor(program solana.PublicKey) (*Decoder, error) {
	switch {
	case program.Equals(r.cfg.AMMProgramID):
		return ammDecoder, nil
	case program.Equals(r.cfg.GovernanceProgramID):
		return govDecoder, nil
	case program.Equals(r.tokens.ID()):
		return tokenDecoder, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProgram, program)
	}
}

func (r *Runtime) dispatch(txn *ledger.Txn, ins Instruction, named map[string]solana.PublicKey, signer solana.PublicKey, now int64) (model.Outcome, error) {
	switch args := ins.Args.(type) {
	case InitializePoolArgs:
		var accts amm.InitializePoolAccounts
		if err := BindAccounts(&accts, named, signer); err != nil {
			return model.Outcome{}, err
		}
		return r.amm.InitializePool(txn, accts, args.FeeRate)
	case AddLiquidityArgs:
		var accts amm.LiquidityAccounts
		if err := BindAccounts(&accts, named, signer); err != nil {
			return model.Outcome{}, err
		}
		return r.amm.AddLiquidity(txn, accts, args.AmountA, args.AmountB, args.MinLPTokens)
	case RemoveLiquidityArgs:
		var accts amm.LiquidityAccounts
		if err := BindAccounts(&accts, named, signer); err != nil {
			return model.Outcome{}, err
		}
		return r.amm.RemoveLiquidity(txn, accts, args.LPTokens, args.MinAmountA, args.MinAmountB)
	case SwapArgs:
		var accts amm.SwapAccounts
		if err := BindAccounts(&accts, named, signer); err != nil {
			return model.Outcome{}, err
		}
		return r.amm.Swap(txn, accts, args.AmountIn, args.MinAmountOut, args.AToB)
	case governance.CreateProposalArgs:
		var accts governance.CreateProposalAccounts
		if err := BindAccounts(&accts, named, signer); err != nil {
			return model.Outcome{}, err
		}
		return r.gov.CreateProposal(txn, accts, args)
	case ProposalIDArgs:
		return r.dispatchProposal(txn, ins.Name, args.ProposalID, named, signer, now)
	default:
		return model.Outcome{}, programerr.ErrInstructionFallbackNotFound
	}
}

func (r *Runtime) dispatchProposal(txn *ledger.Txn, name string, proposalID uint64, named map[string]solana.PublicKey, signer solana.PublicKey, now int64) (model.Outcome, error) {
	if name == Vote {
		var accts governance.VoteAccounts
		if err := BindAccounts(&accts, named, signer); err != nil {
			return model.Outcome{}, err
		}
		return r.gov.Vote(txn, accts, proposalID, now)
	}

	var accts governance.CreatorAccounts
	if err := BindAccounts(&accts, named, signer); err != nil {
		return model.Outcome{}, err
	}
	switch name {
	case StartVoting:
		return r.gov.StartVoting(txn, accts, proposalID, now)
	case FinalizeVoting:
		return r.gov.FinalizeVoting(txn, accts, proposalID, now)
	default:
		return model.Outcome{}, programerr.ErrInstructionFallbackNotFound
	}
}

// ExecutionError describes a rejected transaction for the errors journal.
func ExecutionError(tx model.TransactionRecord, err error) model.ExecutionError {
	rec := model.ExecutionError{
		Sequence: tx.Sequence,
		Program:  tx.Program,
		Signer:   tx.Signer,
		Error:    err.Error(),
	}
	if data, decErr := hexutil.Decode(tx.Data); decErr == nil {
		for _, dec := range []*Decoder{ammDecoder, govDecoder, tokenDecoder} {
			if ins, insErr := dec.Decode(data); insErr == nil {
				rec.Instruction = ins.Name
				break
			}
		}
	}
	if perr, ok := programerr.As(err); ok {
		code := perr.Code
		rec.Code = &code
		rec.Name = perr.Name
	}
	return rec
}
