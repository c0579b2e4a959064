package programerr

import (
	"errors"
	"fmt"
)

// Error is a program failure returned verbatim to the caller.
type Error struct {
	Code uint32 `json:"code"`
	Name string `json:"name"`
	Msg  string `json:"msg"`
}

// New builds a program error.
func New(code uint32, name, msg string) *Error {
	return &Error{Code: code, Name: name, Msg: msg}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Name, e.Code, e.Msg)
}

// Is reports whether target carries the same code and name.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && t.Name == e.Name
}

// As extracts the program error from a wrapped chain.
func As(err error) (*Error, bool) {
	var perr *Error
	if errors.As(err, &perr) {
		return perr, true
	}
	return nil, false
}

// Host account constraint failures, numbered like the Anchor framework.
var (
	ErrInstructionFallbackNotFound  = New(101, "InstructionFallbackNotFound", "Fallback functions are not supported")
	ErrInstructionDidNotDeserialize = New(102, "InstructionDidNotDeserialize", "The program could not deserialize the given instruction")
	ErrConstraintSigner             = New(2002, "ConstraintSigner", "A signer constraint was violated")
	ErrConstraintSeeds              = New(2006, "ConstraintSeeds", "A seeds constraint was violated")
	ErrConstraintAssociated         = New(2009, "ConstraintAssociated", "An associated constraint was violated")
	ErrAccountDiscriminatorMismatch = New(3002, "AccountDiscriminatorMismatch", "Account discriminator did not match what was expected")
	ErrAccountDidNotDeserialize     = New(3003, "AccountDidNotDeserialize", "Failed to deserialize the account")
	ErrAccountOwnedByWrongProgram   = New(3007, "AccountOwnedByWrongProgram", "The given account is owned by a different program than expected")
	ErrAccountNotInitialized        = New(3012, "AccountNotInitialized", "The program expected this account to be already initialized")
	ErrAccountAlreadyInUse          = New(0, "AccountAlreadyInUse", "An account with the same address already exists")
	ErrMissingAccount               = New(3005, "AccountNotEnoughKeys", "Not enough account keys given to the instruction")
)

// Runtime instruction failures that carry no custom code.
var (
	ErrMissingRequiredSignature = New(0, "MissingRequiredSignature", "An account required by the instruction is missing a signature")
	ErrArithmeticOverflow       = New(0, "ArithmeticOverflow", "Program arithmetic overflowed")
)
