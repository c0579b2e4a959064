package derive

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Signer is an authority capability. It is either a transaction signer or a
// program address proven by its seeds.
type Signer struct {
	key     solana.PublicKey
	program bool
}

// UserSigner wraps the key that signed the current transaction.
func UserSigner(key solana.PublicKey) Signer {
	return Signer{key: key}
}

// ProgramSigner proves authority over the address derived from seeds and bump.
func ProgramSigner(programID solana.PublicKey, seeds [][]byte, bump uint8) (Signer, error) {
	addr, err := solana.CreateProgramAddress(withBump(seeds, bump), programID)
	if err != nil {
		return Signer{}, fmt.Errorf("program signer: %w", err)
	}
	return Signer{key: addr, program: true}, nil
}

// Key returns the authority address.
func (s Signer) Key() solana.PublicKey { return s.key }

// IsProgram reports whether the capability came from a derivation proof.
func (s Signer) IsProgram() bool { return s.program }

func (s Signer) String() string {
	if s.program {
		return "program:" + s.key.String()
	}
	return s.key.String()
}
