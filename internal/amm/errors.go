package amm

import "ammGovernance/internal/programerr"

// Pool engine errors. Codes follow declaration order from 6000.
var (
	ErrInvalidAmount          = programerr.New(6000, "InvalidAmount", "Invalid amount provided")
	ErrSlippageExceeded       = programerr.New(6001, "SlippageExceeded", "Slippage tolerance exceeded")
	ErrInsufficientLiquidity  = programerr.New(6002, "InsufficientLiquidity", "Insufficient liquidity in the pool")
	ErrPoolAlreadyInitialized = programerr.New(6003, "PoolAlreadyInitialized", "Pool already initialized")
	ErrInvalidFeeRate         = programerr.New(6004, "InvalidFeeRate", "Invalid fee rate. Must be between 0 and 10000 basis points")
	ErrMathOverflow           = programerr.New(6005, "MathOverflow", "Mathematical overflow occurred")
	ErrInvalidTokenMint       = programerr.New(6006, "InvalidTokenMint", "Invalid token mint")
	ErrUnauthorized           = programerr.New(6007, "Unauthorized", "Unauthorized access")
	ErrInvalidPoolState       = programerr.New(6008, "InvalidPoolState", "Invalid pool state")
	ErrIdenticalMints         = programerr.New(6009, "IdenticalMints", "Token mints must be different")
)

// Errors lists every pool engine error in code order.
var Errors = []*programerr.Error{
	ErrInvalidAmount,
	ErrSlippageExceeded,
	ErrInsufficientLiquidity,
	ErrPoolAlreadyInitialized,
	ErrInvalidFeeRate,
	ErrMathOverflow,
	ErrInvalidTokenMint,
	ErrUnauthorized,
	ErrInvalidPoolState,
	ErrIdenticalMints,
}
