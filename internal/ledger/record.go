package ledger

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"

	"ammGovernance/internal/programerr"
)

// Record is a typed account payload stored as discriminator || borsh(value).
type Record interface {
	Discriminator() [8]byte
}

// EncodeRecord serializes rec with its discriminator.
func EncodeRecord(rec Record) ([]byte, error) {
	disc := rec.Discriminator()
	body, err := borsh.Serialize(reflect.Indirect(reflect.ValueOf(rec)).Interface())
	if err != nil {
		return nil, fmt.Errorf("borsh serialize: %w", err)
	}
	out := make([]byte, 0, len(disc)+len(body))
	out = append(out, disc[:]...)
	return append(out, body...), nil
}

// DecodeRecord fills out from data. out must be a pointer.
func DecodeRecord(data []byte, out Record) error {
	disc := out.Discriminator()
	if len(data) < len(disc) || !bytes.Equal(data[:len(disc)], disc[:]) {
		return programerr.ErrAccountDiscriminatorMismatch
	}
	if err := borsh.Deserialize(out, data[len(disc):]); err != nil {
		return fmt.Errorf("%w: %v", programerr.ErrAccountDidNotDeserialize, err)
	}
	return nil
}

// Load reads a typed account owned by owner.
func Load(t *Txn, key, owner solana.PublicKey, out Record) error {
	acc, ok, err := t.Get(key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("load %s: %w", key, programerr.ErrAccountNotInitialized)
	}
	if !acc.Owner.Equals(owner) {
		return fmt.Errorf("load %s: %w", key, programerr.ErrAccountOwnedByWrongProgram)
	}
	if err := DecodeRecord(acc.Data, out); err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	return nil
}

// Init creates a typed account owned by owner.
func Init(t *Txn, key, owner solana.PublicKey, rec Record) error {
	data, err := EncodeRecord(rec)
	if err != nil {
		return err
	}
	return t.Create(key, Account{Owner: owner, Data: data})
}

// Save overwrites a typed account owned by owner.
func Save(t *Txn, key, owner solana.PublicKey, rec Record) error {
	data, err := EncodeRecord(rec)
	if err != nil {
		return err
	}
	return t.Put(key, Account{Owner: owner, Data: data})
}
