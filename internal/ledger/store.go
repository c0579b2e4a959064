// Package ledger is the account store behind both programs. Every
// transaction runs in one pebble indexed batch that is committed or
// discarded as a whole.
package ledger

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"
)

var (
	ErrClosed   = errors.New("ledger is closed")
	ErrTxnDone  = errors.New("transaction already committed or discarded")
	accountPfx  = []byte("a/")
	lastSeqKey  = []byte("m/last_sequence")
	lastTsKey   = []byte("m/last_timestamp")
	accountsEnd = []byte("a0")
)

// Account is a raw ledger entry.
type Account struct {
	Owner solana.PublicKey
	Data  []byte
}

// Store is a pebble-backed account store.
type Store struct {
	db *pebble.DB
}

// Open opens the store in dir. An empty dir keeps everything in memory.
func Open(dir string) (*Store, error) {
	opts := &pebble.Options{}
	if dir == "" {
		opts.FS = vfs.NewMem()
	}
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("open pebble: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Begin starts a transaction. Callers serialize transactions.
func (s *Store) Begin() *Txn {
	return &Txn{batch: s.db.NewIndexedBatch()}
}

// Get reads a committed account.
func (s *Store) Get(key solana.PublicKey) (Account, bool, error) {
	if s.db == nil {
		return Account{}, false, ErrClosed
	}
	return getAccount(s.db, key)
}

// LastSequence returns the sequence of the last applied transaction.
func (s *Store) LastSequence() (uint64, bool, error) {
	return s.readMeta(lastSeqKey, "last sequence")
}

// LastTimestamp returns the clock value the last committed transaction ran
// at. Rejected transactions do not move it.
func (s *Store) LastTimestamp() (int64, bool, error) {
	ts, ok, err := s.readMeta(lastTsKey, "last timestamp")
	return int64(ts), ok, err
}

func (s *Store) readMeta(key []byte, what string) (uint64, bool, error) {
	if s.db == nil {
		return 0, false, ErrClosed
	}
	val, closer, err := s.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("read %s: %w", what, err)
	}
	defer closer.Close()
	if len(val) != 8 {
		return 0, false, fmt.Errorf("corrupt %s: %d bytes", what, len(val))
	}
	return binary.BigEndian.Uint64(val), true, nil
}

// MarkSequence records seq as applied without touching accounts.
func (s *Store) MarkSequence(seq uint64) error {
	if s.db == nil {
		return ErrClosed
	}
	return s.db.Set(lastSeqKey, encodeSeq(seq), pebble.Sync)
}

// ForEach visits every committed account in key order.
func (s *Store) ForEach(fn func(key solana.PublicKey, acc Account) error) error {
	if s.db == nil {
		return ErrClosed
	}
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: accountPfx,
		UpperBound: accountsEnd,
	})
	if err != nil {
		return fmt.Errorf("new iterator: %w", err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		k := iter.Key()
		if len(k) != len(accountPfx)+solana.PublicKeyLength {
			continue
		}
		key := solana.PublicKeyFromBytes(k[len(accountPfx):])
		acc, err := decodeAccount(iter.Value())
		if err != nil {
			return fmt.Errorf("account %s: %w", key, err)
		}
		if err := fn(key, acc); err != nil {
			return err
		}
	}
	return iter.Error()
}

func getAccount(r pebble.Reader, key solana.PublicKey) (Account, bool, error) {
	val, closer, err := r.Get(accountKey(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return Account{}, false, nil
		}
		return Account{}, false, fmt.Errorf("read account %s: %w", key, err)
	}
	defer closer.Close()

	acc, err := decodeAccount(val)
	if err != nil {
		return Account{}, false, fmt.Errorf("account %s: %w", key, err)
	}
	return acc, true, nil
}

func accountKey(key solana.PublicKey) []byte {
	out := make([]byte, 0, len(accountPfx)+solana.PublicKeyLength)
	out = append(out, accountPfx...)
	return append(out, key[:]...)
}

type accountEnvelope struct {
	Owner [32]byte
	Data  []byte
}

func encodeAccount(acc Account) ([]byte, error) {
	return borsh.Serialize(accountEnvelope{Owner: acc.Owner, Data: acc.Data})
}

func decodeAccount(raw []byte) (Account, error) {
	var env accountEnvelope
	if err := borsh.Deserialize(&env, raw); err != nil {
		return Account{}, fmt.Errorf("decode account envelope: %w", err)
	}
	return Account{Owner: solana.PublicKey(env.Owner), Data: env.Data}, nil
}

func encodeSeq(seq uint64) []byte {
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, seq)
	return out
}
