package runtime

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"ammGovernance/internal/derive"
	"ammGovernance/internal/ledger"
	"ammGovernance/internal/model"
	"ammGovernance/internal/programerr"
)

// Host token instructions used to seed mints and balances.
const (
	InitializeMint          = "initialize_mint"
	CreateAssociatedAccount = "create_associated_account"
	MintTo                  = "mint_to"
)

// InitializeMintArgs are the arguments of initialize_mint.
type InitializeMintArgs struct {
	Decimals uint8
}

// MintToArgs are the arguments of mint_to.
type MintToArgs struct {
	Amount uint64
}

// InitializeMintAccounts are the accounts of initialize_mint.
type InitializeMintAccounts struct {
	Authority solana.PublicKey `account:"authority,signer"`
	Mint      solana.PublicKey `account:"mint"`
}

// CreateAssociatedAccountAccounts are the accounts of create_associated_account.
type CreateAssociatedAccountAccounts struct {
	Payer solana.PublicKey `account:"payer,signer"`
	Owner solana.PublicKey `account:"owner"`
	Mint  solana.PublicKey `account:"mint"`
}

// MintToAccounts are the accounts of mint_to.
type MintToAccounts struct {
	Authority solana.PublicKey `account:"authority,signer"`
	Mint      solana.PublicKey `account:"mint"`
	To        solana.PublicKey `account:"to"`
}

// NewTokenDecoder decodes host token instructions.
func NewTokenDecoder() *Decoder {
	return newDecoder(map[string]interface{}{
		InitializeMint:          InitializeMintArgs{},
		CreateAssociatedAccount: struct{}{},
		MintTo:                  MintToArgs{},
	})
}

func (r *Runtime) dispatchToken(txn *ledger.Txn, ins Instruction, named map[string]solana.PublicKey, signer solana.PublicKey) (model.Outcome, error) {
	switch ins.Name {
	case InitializeMint:
		var accts InitializeMintAccounts
		if err := BindAccounts(&accts, named, signer); err != nil {
			return model.Outcome{}, err
		}
		// Off-curve addresses belong to programs; only the owning program
		// can create an account there.
		if !solana.IsOnCurve(accts.Mint[:]) {
			return model.Outcome{}, fmt.Errorf("mint %s is a program address: %w", accts.Mint, programerr.ErrMissingRequiredSignature)
		}
		args := ins.Args.(InitializeMintArgs)
		if err := r.tokens.InitializeMint(txn, accts.Mint, accts.Authority, args.Decimals); err != nil {
			return model.Outcome{}, err
		}
		return model.Outcome{
			Address:   accts.Mint.String(),
			EventName: model.EventMintInitialized,
			Data: model.MintInitializedData{
				Mint:      accts.Mint.String(),
				Authority: accts.Authority.String(),
				Decimals:  args.Decimals,
			},
		}, nil
	case CreateAssociatedAccount:
		var accts CreateAssociatedAccountAccounts
		if err := BindAccounts(&accts, named, signer); err != nil {
			return model.Outcome{}, err
		}
		addr, err := r.tokens.InitializeAssociatedAccount(txn, accts.Mint, accts.Owner)
		if err != nil {
			return model.Outcome{}, err
		}
		return model.Outcome{
			Address:   addr.String(),
			EventName: model.EventAccountCreated,
			Data: model.AccountCreatedData{
				Account: addr.String(),
				Mint:    accts.Mint.String(),
				Owner:   accts.Owner.String(),
			},
		}, nil
	case MintTo:
		var accts MintToAccounts
		if err := BindAccounts(&accts, named, signer); err != nil {
			return model.Outcome{}, err
		}
		args := ins.Args.(MintToArgs)
		if err := r.tokens.MintTo(txn, accts.Mint, accts.To, derive.UserSigner(accts.Authority), args.Amount); err != nil {
			return model.Outcome{}, err
		}
		mint, err := r.tokens.Mint(txn, accts.Mint)
		if err != nil {
			return model.Outcome{}, err
		}
		return model.Outcome{
			Address:   accts.To.String(),
			EventName: model.EventTokensMinted,
			Data: model.TokensMintedData{
				Mint:    accts.Mint.String(),
				Account: accts.To.String(),
				Amount:  args.Amount,
				Supply:  mint.Supply,
			},
		}, nil
	default:
		return model.Outcome{}, programerr.ErrInstructionFallbackNotFound
	}
}
