// Package token is the fungible token ledger the programs transfer through.
package token

import (
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"

	"ammGovernance/internal/derive"
	"ammGovernance/internal/ledger"
	"ammGovernance/internal/model"
	"ammGovernance/internal/programerr"
)

var (
	ErrInsufficientFunds    = programerr.New(1, "InsufficientFunds", "Insufficient funds")
	ErrMintMismatch         = programerr.New(3, "MintMismatch", "Account not associated with this Mint")
	ErrOwnerMismatch        = programerr.New(4, "OwnerMismatch", "Owner does not match")
	ErrOverflow             = programerr.New(14, "Overflow", "Operation overflowed")
	ErrMintDecimalsMismatch = programerr.New(18, "MintDecimalsMismatch", "The provided decimals value different from the Mint decimals")
)

// Program manages mints and token accounts in the ledger.
type Program struct {
	id solana.PublicKey
}

// New returns the token program owning mints and token accounts.
func New() *Program {
	return &Program{id: solana.TokenProgramID}
}

// ID is the owner of every mint and token account.
func (p *Program) ID() solana.PublicKey { return p.id }

// Mint loads a mint.
func (p *Program) Mint(txn *ledger.Txn, key solana.PublicKey) (model.Mint, error) {
	var mint model.Mint
	if err := ledger.Load(txn, key, p.id, &mint); err != nil {
		return model.Mint{}, err
	}
	return mint, nil
}

// Account loads a token account.
func (p *Program) Account(txn *ledger.Txn, key solana.PublicKey) (model.TokenAccount, error) {
	var acc model.TokenAccount
	if err := ledger.Load(txn, key, p.id, &acc); err != nil {
		return model.TokenAccount{}, err
	}
	return acc, nil
}

// InitializeMint creates an empty mint.
func (p *Program) InitializeMint(txn *ledger.Txn, key, authority solana.PublicKey, decimals uint8) error {
	return ledger.Init(txn, key, p.id, model.Mint{MintAuthority: authority, Decimals: decimals})
}

// InitializeAccount creates an empty token account of mint controlled by owner.
func (p *Program) InitializeAccount(txn *ledger.Txn, key, mint, owner solana.PublicKey) error {
	if _, err := p.Mint(txn, mint); err != nil {
		return fmt.Errorf("mint %s: %w", mint, err)
	}
	return ledger.Init(txn, key, p.id, model.TokenAccount{Mint: mint, Owner: owner})
}

// InitializeAssociatedAccount creates the associated token account of owner for mint.
func (p *Program) InitializeAssociatedAccount(txn *ledger.Txn, mint, owner solana.PublicKey) (solana.PublicKey, error) {
	addr, err := derive.VaultAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if err := p.InitializeAccount(txn, addr, mint, owner); err != nil {
		return solana.PublicKey{}, err
	}
	return addr, nil
}

// TransferChecked moves amount of mint from one account to another.
func (p *Program) TransferChecked(txn *ledger.Txn, from, to, mint solana.PublicKey, authority derive.Signer, amount uint64, decimals uint8) error {
	mintAcc, err := p.Mint(txn, mint)
	if err != nil {
		return err
	}
	if mintAcc.Decimals != decimals {
		return ErrMintDecimalsMismatch
	}

	src, err := p.Account(txn, from)
	if err != nil {
		return err
	}
	dst, err := p.Account(txn, to)
	if err != nil {
		return err
	}
	if !src.Mint.Equals(mint) || !dst.Mint.Equals(mint) {
		return ErrMintMismatch
	}
	if !src.Owner.Equals(authority.Key()) {
		return ErrOwnerMismatch
	}
	if src.Amount < amount {
		return ErrInsufficientFunds
	}
	if from.Equals(to) {
		return nil
	}
	if dst.Amount > math.MaxUint64-amount {
		return ErrOverflow
	}

	src.Amount -= amount
	dst.Amount += amount
	if err := ledger.Save(txn, from, p.id, src); err != nil {
		return err
	}
	return ledger.Save(txn, to, p.id, dst)
}

// MintTo creates amount new tokens in the destination account.
func (p *Program) MintTo(txn *ledger.Txn, mint, to solana.PublicKey, authority derive.Signer, amount uint64) error {
	mintAcc, err := p.Mint(txn, mint)
	if err != nil {
		return err
	}
	if !mintAcc.MintAuthority.Equals(authority.Key()) {
		return ErrOwnerMismatch
	}
	dst, err := p.Account(txn, to)
	if err != nil {
		return err
	}
	if !dst.Mint.Equals(mint) {
		return ErrMintMismatch
	}
	if mintAcc.Supply > math.MaxUint64-amount || dst.Amount > math.MaxUint64-amount {
		return ErrOverflow
	}

	mintAcc.Supply += amount
	dst.Amount += amount
	if err := ledger.Save(txn, mint, p.id, mintAcc); err != nil {
		return err
	}
	return ledger.Save(txn, to, p.id, dst)
}

// Burn destroys amount tokens from an account.
func (p *Program) Burn(txn *ledger.Txn, from, mint solana.PublicKey, authority derive.Signer, amount uint64) error {
	mintAcc, err := p.Mint(txn, mint)
	if err != nil {
		return err
	}
	src, err := p.Account(txn, from)
	if err != nil {
		return err
	}
	if !src.Mint.Equals(mint) {
		return ErrMintMismatch
	}
	if !src.Owner.Equals(authority.Key()) {
		return ErrOwnerMismatch
	}
	if src.Amount < amount {
		return ErrInsufficientFunds
	}
	if mintAcc.Supply < amount {
		return ErrOverflow
	}

	src.Amount -= amount
	mintAcc.Supply -= amount
	if err := ledger.Save(txn, from, p.id, src); err != nil {
		return err
	}
	return ledger.Save(txn, mint, p.id, mintAcc)
}
