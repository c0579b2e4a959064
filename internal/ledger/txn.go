package ledger

import (
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/gagliardetto/solana-go"

	"ammGovernance/internal/programerr"
)

// Txn buffers account writes until Commit. Reads observe the buffered writes.
type Txn struct {
	batch *pebble.Batch
	done  bool
}

// Get reads an account as seen by this transaction.
func (t *Txn) Get(key solana.PublicKey) (Account, bool, error) {
	if t.done {
		return Account{}, false, ErrTxnDone
	}
	return getAccount(t.batch, key)
}

// Exists reports whether key holds an account.
func (t *Txn) Exists(key solana.PublicKey) (bool, error) {
	_, ok, err := t.Get(key)
	return ok, err
}

// Create allocates a new account. It fails if the address is already in use.
func (t *Txn) Create(key solana.PublicKey, acc Account) error {
	ok, err := t.Exists(key)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("create %s: %w", key, programerr.ErrAccountAlreadyInUse)
	}
	return t.set(key, acc)
}

// Put overwrites an existing account.
func (t *Txn) Put(key solana.PublicKey, acc Account) error {
	ok, err := t.Exists(key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("update %s: %w", key, programerr.ErrAccountNotInitialized)
	}
	return t.set(key, acc)
}

// SetSequence records seq as applied when the transaction commits.
func (t *Txn) SetSequence(seq uint64) error {
	if t.done {
		return ErrTxnDone
	}
	return t.batch.Set(lastSeqKey, encodeSeq(seq), nil)
}

// SetTimestamp records the clock value the transaction ran at.
func (t *Txn) SetTimestamp(ts int64) error {
	if t.done {
		return ErrTxnDone
	}
	return t.batch.Set(lastTsKey, encodeSeq(uint64(ts)), nil)
}

// Commit applies every buffered write atomically.
func (t *Txn) Commit() error {
	if t.done {
		return ErrTxnDone
	}
	t.done = true
	defer t.batch.Close()
	if err := t.batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// Discard drops every buffered write. It is safe to call after Commit.
func (t *Txn) Discard() {
	if t.done {
		return
	}
	t.done = true
	_ = t.batch.Close()
}

func (t *Txn) set(key solana.PublicKey, acc Account) error {
	if t.done {
		return ErrTxnDone
	}
	raw, err := encodeAccount(acc)
	if err != nil {
		return fmt.Errorf("encode account %s: %w", key, err)
	}
	return t.batch.Set(accountKey(key), raw, nil)
}
