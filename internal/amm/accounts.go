package amm

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"ammGovernance/internal/derive"
)

// InitializePoolAccounts are the accounts of initialize_pool.
type InitializePoolAccounts struct {
	Payer       solana.PublicKey `account:"payer,signer"`
	TokenAMint  solana.PublicKey `account:"token_a_mint"`
	TokenBMint  solana.PublicKey `account:"token_b_mint"`
	Pool        solana.PublicKey `account:"pool"`
	LPMint      solana.PublicKey `account:"lp_mint"`
	TokenAVault solana.PublicKey `account:"token_a_vault"`
	TokenBVault solana.PublicKey `account:"token_b_vault"`
}

// LiquidityAccounts are the accounts of add_liquidity and remove_liquidity.
type LiquidityAccounts struct {
	User        solana.PublicKey `account:"user,signer"`
	Pool        solana.PublicKey `account:"pool"`
	LPMint      solana.PublicKey `account:"lp_mint"`
	TokenAVault solana.PublicKey `account:"token_a_vault"`
	TokenBVault solana.PublicKey `account:"token_b_vault"`
	UserTokenA  solana.PublicKey `account:"user_token_a"`
	UserTokenB  solana.PublicKey `account:"user_token_b"`
	UserLPToken solana.PublicKey `account:"user_lp_token"`
	TokenAMint  solana.PublicKey `account:"token_a_mint"`
	TokenBMint  solana.PublicKey `account:"token_b_mint"`
}

// SwapAccounts are the accounts of swap.
type SwapAccounts struct {
	User        solana.PublicKey `account:"user,signer"`
	Pool        solana.PublicKey `account:"pool"`
	TokenAVault solana.PublicKey `account:"token_a_vault"`
	TokenBVault solana.PublicKey `account:"token_b_vault"`
	UserTokenA  solana.PublicKey `account:"user_token_a"`
	UserTokenB  solana.PublicKey `account:"user_token_b"`
	TokenAMint  solana.PublicKey `account:"token_a_mint"`
	TokenBMint  solana.PublicKey `account:"token_b_mint"`
}

// PoolAddresses are the derived addresses of a pool.
type PoolAddresses struct {
	Pool        solana.PublicKey
	LPMint      solana.PublicKey
	TokenAVault solana.PublicKey
	TokenBVault solana.PublicKey
}

// DerivePoolAddresses computes every pool-owned address for a mint pair.
func DerivePoolAddresses(programID, mintA, mintB solana.PublicKey) (PoolAddresses, error) {
	pool, _, err := derive.PoolAddress(programID, mintA, mintB)
	if err != nil {
		return PoolAddresses{}, fmt.Errorf("derive pool: %w", err)
	}
	lpMint, _, err := derive.LPMintAddress(programID, pool)
	if err != nil {
		return PoolAddresses{}, fmt.Errorf("derive lp mint: %w", err)
	}
	vaultA, err := derive.VaultAddress(pool, mintA)
	if err != nil {
		return PoolAddresses{}, fmt.Errorf("derive vault a: %w", err)
	}
	vaultB, err := derive.VaultAddress(pool, mintB)
	if err != nil {
		return PoolAddresses{}, fmt.Errorf("derive vault b: %w", err)
	}
	return PoolAddresses{Pool: pool, LPMint: lpMint, TokenAVault: vaultA, TokenBVault: vaultB}, nil
}

// NewInitializePoolAccounts fills the derived accounts of initialize_pool.
func NewInitializePoolAccounts(programID, payer, mintA, mintB solana.PublicKey) (InitializePoolAccounts, error) {
	addrs, err := DerivePoolAddresses(programID, mintA, mintB)
	if err != nil {
		return InitializePoolAccounts{}, err
	}
	return InitializePoolAccounts{
		Payer:       payer,
		TokenAMint:  mintA,
		TokenBMint:  mintB,
		Pool:        addrs.Pool,
		LPMint:      addrs.LPMint,
		TokenAVault: addrs.TokenAVault,
		TokenBVault: addrs.TokenBVault,
	}, nil
}

// NewLiquidityAccounts fills liquidity accounts using the user's associated token accounts.
func NewLiquidityAccounts(programID, user, mintA, mintB solana.PublicKey) (LiquidityAccounts, error) {
	addrs, err := DerivePoolAddresses(programID, mintA, mintB)
	if err != nil {
		return LiquidityAccounts{}, err
	}
	userA, err := derive.VaultAddress(user, mintA)
	if err != nil {
		return LiquidityAccounts{}, err
	}
	userB, err := derive.VaultAddress(user, mintB)
	if err != nil {
		return LiquidityAccounts{}, err
	}
	userLP, err := derive.VaultAddress(user, addrs.LPMint)
	if err != nil {
		return LiquidityAccounts{}, err
	}
	return LiquidityAccounts{
		User:        user,
		Pool:        addrs.Pool,
		LPMint:      addrs.LPMint,
		TokenAVault: addrs.TokenAVault,
		TokenBVault: addrs.TokenBVault,
		UserTokenA:  userA,
		UserTokenB:  userB,
		UserLPToken: userLP,
		TokenAMint:  mintA,
		TokenBMint:  mintB,
	}, nil
}

// NewSwapAccounts fills swap accounts using the user's associated token accounts.
func NewSwapAccounts(programID, user, mintA, mintB solana.PublicKey) (SwapAccounts, error) {
	la, err := NewLiquidityAccounts(programID, user, mintA, mintB)
	if err != nil {
		return SwapAccounts{}, err
	}
	return SwapAccounts{
		User:        la.User,
		Pool:        la.Pool,
		TokenAVault: la.TokenAVault,
		TokenBVault: la.TokenBVault,
		UserTokenA:  la.UserTokenA,
		UserTokenB:  la.UserTokenB,
		TokenAMint:  la.TokenAMint,
		TokenBMint:  la.TokenBMint,
	}, nil
}
